// Package migrations owns the history database schema. The SQL lives in
// files/ and is embedded into the binary.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFS embed.FS

const schemaDir = "files"

// ErrNeedsMigration means the history database has never been migrated,
// typically because `nfc config init` was not run.
var ErrNeedsMigration = errors.New("history database has no schema (run `nfc config init`)")

// SchemaState describes where a history database stands relative to the
// schema compiled into this binary. Version is 0 for a database that has
// never been migrated.
type SchemaState struct {
	Version uint
	Latest  uint
	Dirty   bool
}

// Err is nil only when the database can be used as is.
func (s SchemaState) Err() error {
	switch {
	case s.Dirty:
		return fmt.Errorf("history schema is dirty at version %d; a previous migration failed", s.Version)
	case s.Version == 0:
		return ErrNeedsMigration
	case s.Version < s.Latest:
		return fmt.Errorf("history schema is at version %d, latest is %d", s.Version, s.Latest)
	case s.Version > s.Latest:
		return fmt.Errorf("history schema version %d is newer than this binary (%d); upgrade nfc", s.Version, s.Latest)
	}
	return nil
}

func (s SchemaState) String() string {
	if err := s.Err(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("version %d (up to date)", s.Version)
}

// Inspect reads the schema version of db without changing anything.
func Inspect(db *sql.DB) (SchemaState, error) {
	latest, err := LatestVersion()
	if err != nil {
		return SchemaState{}, err
	}
	m, err := open(db)
	if err != nil {
		return SchemaState{}, err
	}
	// Closing m would close db, which belongs to the caller.

	state := SchemaState{Latest: latest}
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return state, nil
	case err != nil:
		return SchemaState{}, fmt.Errorf("reading schema version: %w", err)
	}
	state.Version, state.Dirty = version, dirty
	return state, nil
}

// CheckDBMigrationStatus returns nil when db is at the latest schema.
func CheckDBMigrationStatus(db *sql.DB) error {
	state, err := Inspect(db)
	if err != nil {
		return err
	}
	return state.Err()
}

// MigrateUp applies every pending migration. It is a no-op on an up to date
// database.
func MigrateUp(db *sql.DB) error {
	m, err := open(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating history schema: %w", err)
	}
	return nil
}

// LatestVersion is the highest migration embedded in the binary.
func LatestVersion() (uint, error) {
	src, err := iofs.New(schemaFS, schemaDir)
	if err != nil {
		return 0, fmt.Errorf("reading embedded migrations: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

func open(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFS, schemaDir)
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("opening sqlite3 migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing migrations: %w", err)
	}
	return m, nil
}

func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("no embedded migrations: %w", err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			// os.ErrNotExist once past the last file.
			return v, nil
		}
		v = next
	}
}
