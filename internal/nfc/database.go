package nfc

import "nfc-go/internal/model"

// Database stores the history of conversion operations.
type Database interface {
	// CreateOperation records the start of an operation and assigns its ID.
	CreateOperation(operation string, parameters string) (*model.Operation, error)

	// FinishOperation stamps the finish time and final status.
	FinishOperation(id int64, status string) error

	// FindOperationByID returns nil if no operation has the given ID.
	FindOperationByID(id int64) (*model.Operation, error)

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*model.Operation, error)

	// RecordRename stores the outcome of one rename.
	RecordRename(record *model.RenameRecord) error

	// ListRenamesForOperation returns the renames of an operation in the
	// order they were recorded.
	ListRenamesForOperation(operationID int64) ([]*model.RenameRecord, error)

	// Close closes the database connection.
	Close() error
}
