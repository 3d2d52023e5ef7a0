package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Backend is a string key/value store playing the role of browser local
// storage. A missing key is reported with ok == false and a nil error.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: map[string]string{}}
}

func (b *MemoryBackend) Get(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.entries[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

// FileBackend persists all entries as one JSON object on disk. Every Get
// re-reads the file so writes from other processes are observed.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// NewFileBackend returns a backend for path. The file is created lazily on
// the first Set.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path is the location of the backing file.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, err := b.load()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (b *FileBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries, err := b.load()
	if err != nil {
		// A corrupt file is replaced rather than blocking writes forever.
		entries = map[string]string{}
	}
	entries[key] = value
	return b.write(entries)
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries, nil
}

func (b *FileBackend) write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}
