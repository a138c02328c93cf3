package app

import "nfc-go/internal/model"

// Operation tracks a CLI command that may write conversion history.
// Operations are created in memory with ID=0. Only commands that rename
// entries persist them (giving them an auto-increment ID from the database).
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // model.StatusSuccess, model.StatusPartial or model.StatusError
}

// NewOperation creates a new in-memory operation.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     model.StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// RecordBatch folds the result of one conversion batch into the status.
// A status never improves: once partial or error, it stays that way.
func (op *Operation) RecordBatch(succeeded, failed int) {
	var batch string
	switch {
	case failed == 0:
		batch = model.StatusSuccess
	case succeeded == 0:
		batch = model.StatusError
	default:
		batch = model.StatusPartial
	}
	if statusRank(batch) > statusRank(op.Status) {
		op.Status = batch
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = model.StatusError
}

func statusRank(status string) int {
	switch status {
	case model.StatusSuccess:
		return 0
	case model.StatusPartial:
		return 1
	default:
		return 2
	}
}
