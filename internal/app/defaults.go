package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nfc-go/internal/config"
)

// Defaults holds the paths nfc uses when the user has not configured them.
type Defaults struct {
	ConfigPath string
	BaseDir    string
	LogDir     string
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - NFC_CONFIG_PATH: config file location (default: ~/.config/nfc.toml)
//   - NFC_HOME: base directory for nfc data (default: ~/.local/share/nfc)
func GetDefaults() (*Defaults, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return &Defaults{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
	}, nil
}

// LoadConfig reads the config file named by d. When no config file exists,
// an ephemeral config is returned instead, with history kept in memory.
// The second return value reports whether a config file was found.
func LoadConfig(d *Defaults) (*config.Config, bool, error) {
	cfg, err := config.ReadFromFile(d.ConfigPath)
	if err == nil {
		return cfg, true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}
	return config.NewEphemeralConfig(d.BaseDir), false, nil
}

// getConfigPath returns the config file path, checking NFC_CONFIG_PATH env var first,
// then falling back to the default ~/.config/nfc.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("NFC_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "nfc.toml"), nil
}

// getBaseDir returns the base directory for nfc data, checking NFC_HOME env var first,
// then falling back to the XDG default ~/.local/share/nfc.
func getBaseDir() (string, error) {
	if path := os.Getenv("NFC_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "nfc"), nil
}
