// Package config loads mindsnack settings from a YAML file and MINDSNACK_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides, eg. MINDSNACK_STORAGE__BACKEND.
const EnvPrefix = "MINDSNACK_"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the full application configuration.
type Config struct {
	Dataset string        `koanf:"dataset"`
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	UI      UIConfig      `koanf:"ui"`
}

// StorageConfig selects where read progress lives.
type StorageConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
	Watch   bool   `koanf:"watch"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	Path  string `koanf:"path"`
	Debug bool   `koanf:"debug"`
}

// UIConfig tunes the terminal browser.
type UIConfig struct {
	AltScreen           bool          `koanf:"alt_screen"`
	ScrollTopThreshold  int           `koanf:"scroll_top_threshold"`
	CategoryScrollDelay time.Duration `koanf:"category_scroll_delay"`
	CopyReset           time.Duration `koanf:"copy_reset"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    filepath.Join(dataDir, "progress.json"),
			Watch:   true,
		},
		Log: LogConfig{
			Path: filepath.Join(dataDir, "mindsnack.log"),
		},
		UI: UIConfig{
			AltScreen:           true,
			ScrollTopThreshold:  15,
			CategoryScrollDelay: 100 * time.Millisecond,
			CopyReset:           2 * time.Second,
		},
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "mindsnack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "mindsnack")
	}
	return filepath.Join(home, ".local", "share", "mindsnack")
}

// Load reads the YAML file at path when it exists, then overlays environment
// variables. Nested keys use a double underscore: MINDSNACK_UI__COPY_RESET.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFile, BackendSQLite, BackendMemory)),
		validation.Field(&c.Path, validation.When(c.Backend != BackendMemory, validation.Required)),
	)
}

// Validate validates the UI configuration.
func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ScrollTopThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.CategoryScrollDelay, validation.Required, validation.Min(time.Duration(0))),
		validation.Field(&c.CopyReset, validation.Required, validation.Min(time.Duration(0))),
	)
}
