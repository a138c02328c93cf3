package nfc

import (
	"fmt"

	"nfc-go/internal/model"
)

// GetHistory returns the most recent conversion operations, ordered newest first.
func (s *NFCService) GetHistory(limit int) ([]*model.Operation, error) {
	if s.database == nil {
		return nil, nil
	}
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// GetOperation returns one operation with the renames it attempted.
func (s *NFCService) GetOperation(id int64) (*model.Operation, []*model.RenameRecord, error) {
	if s.database == nil {
		return nil, nil, fmt.Errorf("no history database configured")
	}
	op, err := s.database.FindOperationByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("finding operation: %w", err)
	}
	if op == nil {
		return nil, nil, fmt.Errorf("no operation with id %d", id)
	}

	renames, err := s.database.ListRenamesForOperation(id)
	if err != nil {
		return nil, nil, fmt.Errorf("listing renames: %w", err)
	}
	return op, renames, nil
}
