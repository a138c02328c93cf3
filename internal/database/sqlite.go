package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nfc-go/internal/database/migrations"
	"nfc-go/internal/model"
	"nfc-go/internal/nfc"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each pooled connection to :memory: would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*model.Operation, error) {
	startedAt := time.Now().UTC()
	res, err := s.db.ExecContext(context.Background(),
		`INSERT INTO operations (started_at, operation, parameters, status) VALUES (?, ?, ?, 'running')`,
		startedAt, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}

	return &model.Operation{
		ID:         id,
		StartedAt:  startedAt,
		Operation:  operation,
		Parameters: parameters,
		Status:     model.StatusRunning,
	}, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	res, err := s.db.ExecContext(context.Background(),
		`UPDATE operations SET finished_at = ?, status = ? WHERE id = ?`,
		time.Now().UTC(), status, id)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishing operation: no operation with id %d", id)
	}
	return nil
}

func (s *SQLiteDatabase) FindOperationByID(id int64) (*model.Operation, error) {
	row := s.db.QueryRowContext(context.Background(),
		`SELECT id, started_at, finished_at, operation, parameters, status FROM operations WHERE id = ?`, id)

	op, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding operation by id: %w", err)
	}
	return op, nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*model.Operation, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, started_at, finished_at, operation, parameters, status
		 FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*model.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Rename records

func (s *SQLiteDatabase) RecordRename(record *model.RenameRecord) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO renames (id, operation_id, seq, scan_root, relative_path, kind,
			original_name, normalized_name, status, detail, created_at)
		 VALUES (?, ?, (SELECT COUNT(*) FROM renames WHERE operation_id = ?), ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.OperationID, record.OperationID, record.ScanRoot, record.RelativePath, record.Kind,
		record.OriginalName, record.NormalizedName, record.Status, record.Detail, record.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("recording rename: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListRenamesForOperation(operationID int64) ([]*model.RenameRecord, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, operation_id, scan_root, relative_path, kind, original_name,
			normalized_name, status, detail, created_at
		 FROM renames WHERE operation_id = ? ORDER BY seq`, operationID)
	if err != nil {
		return nil, fmt.Errorf("listing renames: %w", err)
	}
	defer rows.Close()

	var records []*model.RenameRecord
	for rows.Next() {
		var r model.RenameRecord
		if err := rows.Scan(&r.ID, &r.OperationID, &r.ScanRoot, &r.RelativePath, &r.Kind,
			&r.OriginalName, &r.NormalizedName, &r.Status, &r.Detail, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rename: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing renames: %w", err)
	}
	return records, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (*model.Operation, error) {
	var op model.Operation
	if err := row.Scan(&op.ID, &op.StartedAt, &op.FinishedAt, &op.Operation, &op.Parameters, &op.Status); err != nil {
		return nil, err
	}
	return &op, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate applies all pending schema migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Schema reports the schema version without migrating.
func (s *SQLiteDatabase) Schema() (migrations.SchemaState, error) {
	return migrations.Inspect(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements nfc.Database interface
var _ nfc.Database = (*SQLiteDatabase)(nil)
