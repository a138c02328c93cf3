package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultMaxPathLength is the status line width used when the terminal
// width cannot be determined.
const DefaultMaxPathLength = 60

// Config represents the main configuration for nfc.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Database   DatabaseConfig   `toml:"database"`
	Filesystem FilesystemConfig `toml:"filesystem"`
	Display    DisplayConfig    `toml:"display"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	// Ignore lists patterns of entries the scanner never descends into or reports.
	Ignore []string `toml:"ignore"`
}

// DatabaseConfig represents configuration for the conversion history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// DisplayConfig controls terminal output.
type DisplayConfig struct {
	Color         string `toml:"color"`           // "auto" (default), "always" or "never"
	MaxPathLength int    `toml:"max_path_length"` // 0 = terminal width
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Display: DisplayConfig{Color: "auto"},
	}
}

// NewEphemeralConfig returns a config for running without a config file:
// history is kept in memory only and discarded on exit.
func NewEphemeralConfig(baseDir string) *Config {
	cfg := NewConfig("ephemeral", baseDir)
	cfg.Database = DatabaseConfig{Type: "memory"}
	return cfg
}

// Validate checks values that cannot be caught by decoding alone.
func (c *Config) Validate() error {
	switch c.Display.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("display.color must be auto, always or never, got %q", c.Display.Color)
	}
	if c.Display.MaxPathLength < 0 {
		return fmt.Errorf("display.max_path_length must not be negative, got %d", c.Display.MaxPathLength)
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir is required")
	}
	return nil
}

// applyDefaults fills settings an older or hand-written file may omit.
func (c *Config) applyDefaults() {
	if c.Display.Color == "" {
		c.Display.Color = "auto"
	}
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.Database.Type == "" {
		c.Database.Type = "memory"
	}
}

// Manager reads and writes nfc.toml.
type Manager struct{}

// Read decodes a Config. Keys nfc does not know are an error, so a typo such
// as `ignroe = [...]` is reported instead of silently scanning everything.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// ReadFromFile loads and validates the config at path. A missing file
// yields an error matching os.ErrNotExist.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := (&Manager{}).Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Init writes cfg to path, refusing to replace an existing file. The file is
// written next to its destination and renamed into place.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".nfc-*.toml")
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := (&Manager{}).Write(tmp, cfg); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("installing config: %w", err)
	}
	return nil
}
