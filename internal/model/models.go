package model

import (
	"database/sql"
	"time"
)

// Operation statuses. StatusRunning marks an operation that has not finished.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// StatusSkipped is recorded for a selected entry whose name was already NFC.
// Failed renames record their failure reason as status.
const StatusSkipped = "skipped"

// Operation is one CLI invocation that changed the filesystem.
type Operation struct {
	ID         int64 // auto-increment
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Operation  string // e.g. "Convert"
	Parameters string // scan root
	Status     string
}

// RenameRecord is the persisted outcome of one attempted rename.
type RenameRecord struct {
	ID             string // UUID
	OperationID    int64  // Foreign key to Operation
	ScanRoot       string
	RelativePath   string
	Kind           string // "folder" or "file"
	OriginalName   string
	NormalizedName string
	Status         string // "success", "skipped", "target_exists", "not_found", "io_error"
	Detail         string
	CreatedAt      time.Time
}
