package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mindsnack.log")
	logger, err := New(path, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "hello") || !strings.Contains(out, `"session"`) {
		t.Fatalf("log missing message or session: %s", out)
	}
}

func TestNewEmptyPathIsNop(t *testing.T) {
	logger, err := New("", true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("dropped")
}
