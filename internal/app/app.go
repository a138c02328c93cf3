package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"nfc-go/internal/config"
	"nfc-go/internal/database"
	"nfc-go/internal/fs"
	"nfc-go/internal/model"
	"nfc-go/internal/nfc"
)

// NFCApp is the application layer between the CLI and NFCService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and manages the DB lifecycle on Close.
type NFCApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	fsmgr   nfc.FilesystemManager
	service *nfc.NFCService
	op      *Operation
	logFile *os.File
}

// NewNFCApp creates a fully wired NFCApp from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "Convert").
// status receives progress messages and may be nil.
// The caller must call Close when done.
func NewNFCApp(cfg *config.Config, operation string, status nfc.StatusReporter) (*NFCApp, error) {
	return newNFCApp(cfg, operation, status, os.Stderr)
}

func newNFCApp(cfg *config.Config, operation string, status nfc.StatusReporter, stderr io.Writer) (*NFCApp, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, stderr)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := nfc.NewNFCService(db, fsmgr, &slogAdapter{l: logger}, status, nfc.RealClock{}, nfc.UUIDGenerator{})

	return &NFCApp{
		cfg:     cfg,
		db:      db,
		fsmgr:   fsmgr,
		service: svc,
		op:      NewOperation(operation, ""),
		logFile: logFile,
	}, nil
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for commands that rename entries.
func (a *NFCApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// resolveDir resolves rawPath and rejects anything that is not a directory.
func (a *NFCApp) resolveDir(rawPath string) (*nfc.Path, error) {
	p, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if !p.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", p.String())
	}
	return p, nil
}

// Scan resolves rawPath and builds its candidate tree.
func (a *NFCApp) Scan(rawPath string) (*nfc.ScanResult, error) {
	root, err := a.resolveDir(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.Scan(root)
}

// Convert renames the checked nodes of tree, which must come from a scan
// of rawPath. The operation is persisted before the first rename so every
// outcome can be linked to it.
func (a *NFCApp) Convert(rawPath string, tree *nfc.SelectionTree) (*nfc.ConvertReport, error) {
	root, err := a.resolveDir(rawPath)
	if err != nil {
		return nil, err
	}
	if tree.CheckedCount() == 0 {
		return nil, nfc.ErrNothingSelected
	}
	if err := a.persistOperation(root.String()); err != nil {
		return nil, err
	}

	report, err := a.service.Convert(root, tree, a.op.ID)
	if report != nil {
		a.op.RecordBatch(report.Succeeded, report.Failed)
	}
	if err != nil {
		a.op.Fail()
		return report, err
	}
	return report, nil
}

// Preview reports what Convert would do without renaming anything.
func (a *NFCApp) Preview(rawPath string, tree *nfc.SelectionTree) (*nfc.ConvertReport, error) {
	root, err := a.resolveDir(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.Preview(root, tree)
}

// GetHistory returns the most recent conversion operations.
func (a *NFCApp) GetHistory(limit int) ([]*model.Operation, error) {
	return a.service.GetHistory(limit)
}

// GetOperation returns one operation and the renames it attempted.
func (a *NFCApp) GetOperation(id int64) (*model.Operation, []*model.RenameRecord, error) {
	return a.service.GetOperation(id)
}

// ExportHistory writes a consistent snapshot of the history database to destPath.
func (a *NFCApp) ExportHistory(destPath string) error {
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("export destination already exists: %s", destPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking export destination: %w", err)
	}
	if err := a.db.BackupTo(destPath); err != nil {
		return fmt.Errorf("exporting history: %w", err)
	}
	return nil
}

// Operation returns the operation record tracked by this app.
func (a *NFCApp) Operation() *Operation {
	return a.op
}

// Close finalizes the operation and closes all resources.
// For persisted operations the operation record is finished with its final status first.
func (a *NFCApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
