package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nfc-go/internal/config"
)

// ErrNoHistory is returned by OpenExisting when the configured history
// database has not been created yet.
var ErrNoHistory = errors.New("history database does not exist")

// FilePath is where the sqlite history for hostID lives, or ":memory:" for
// the ephemeral database.
func FilePath(cfg config.DatabaseConfig, hostID string) (string, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return "", fmt.Errorf("data_dir required for sqlite database")
		}
		return filepath.Join(cfg.DataDir, hostID+".db"), nil
	case "memory", "":
		return ":memory:", nil
	}
	return "", fmt.Errorf("unknown database type: %s", cfg.Type)
}

// NewDatabaseFromConfig opens (creating if needed) the history database.
// An in-memory history starts empty, so it is migrated here; a sqlite file
// is only migrated by `nfc config init`.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, hostID string) (*SQLiteDatabase, error) {
	path, err := FilePath(cfg, hostID)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db, err := NewSQLiteDatabase(path)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating in-memory history: %w", err)
		}
		return db, nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return NewSQLiteDatabase(path)
}

// OpenExisting opens a sqlite history without creating it. Inspection
// commands use it so they never leave an empty database behind.
func OpenExisting(cfg config.DatabaseConfig, hostID string) (*SQLiteDatabase, error) {
	path, err := FilePath(cfg, hostID)
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoHistory
		}
	}
	return NewDatabaseFromConfig(cfg, hostID)
}
