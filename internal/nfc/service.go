package nfc

import (
	"errors"
	"fmt"
	"sync"

	"nfc-go/internal/model"
)

// NFCService is the orchestration layer used by the CLI. It runs at most
// one scan or conversion at a time.
type NFCService struct {
	database Database
	fsmgr    FilesystemManager
	logger   Logger
	status   StatusReporter
	clock    Clock
	idgen    IDGenerator

	busy sync.Mutex
}

// NewNFCService creates a new NFCService with the provided dependencies.
// database may be nil when conversion history is not needed.
func NewNFCService(database Database, fsmgr FilesystemManager, logger Logger, status StatusReporter, clock Clock, idgen IDGenerator) *NFCService {
	if status == nil {
		status = NopStatusReporter{}
	}
	return &NFCService{
		database: database,
		fsmgr:    fsmgr,
		logger:   logger,
		status:   status,
		clock:    clock,
		idgen:    idgen,
	}
}

// Scan builds the candidate tree for root.
func (s *NFCService) Scan(root *Path) (*ScanResult, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root.String())
	}
	if !s.busy.TryLock() {
		return nil, ErrBusy
	}
	defer s.busy.Unlock()

	s.status.Status("Scanning " + root.String() + "...")
	s.logger.Info("scan started", "root", root.String())

	result := NewScanner(s.fsmgr, s.logger).Scan(root)

	count := result.CandidateCount()
	s.logger.Info("scan complete", "root", root.String(), "entries", result.Entries, "candidates", count, "problems", len(result.Problems))
	s.status.Status(fmt.Sprintf("Scan complete: %d candidate(s).", count))
	return result, nil
}

// ConvertReport summarizes one conversion batch.
type ConvertReport struct {
	Outcomes  []RenameOutcome
	Succeeded int
	Failed    int
	// RescanRoot is the path to scan next. It differs from the original
	// root only when the root folder itself was renamed.
	RescanRoot string
}

// Failures returns the outcomes that did not succeed, in selection order.
func (r *ConvertReport) Failures() []RenameOutcome {
	var failed []RenameOutcome
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Convert renames every checked node of tree. operationID links the
// recorded outcomes to a persisted operation; pass 0 to skip recording.
// Per-item failures are reported in the ConvertReport, not as an error.
func (s *NFCService) Convert(root *Path, tree *SelectionTree, operationID int64) (*ConvertReport, error) {
	return s.convert(root, tree, operationID, true)
}

// Preview reports what Convert would do without touching the filesystem.
func (s *NFCService) Preview(root *Path, tree *SelectionTree) (*ConvertReport, error) {
	return s.convert(root, tree, 0, false)
}

func (s *NFCService) convert(root *Path, tree *SelectionTree, operationID int64, execute bool) (*ConvertReport, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root.String())
	}
	selected := tree.CollectChecked()
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}
	if !s.busy.TryLock() {
		return nil, ErrBusy
	}
	defer s.busy.Unlock()

	executor := NewRenameExecutor(s.fsmgr, s.logger)
	var outcomes []RenameOutcome
	if execute {
		s.logger.Info("conversion started", "root", root.String(), "selected", len(selected))
		outcomes = executor.Apply(selected, root.String())
	} else {
		outcomes = executor.Plan(selected, root.String())
	}

	report := &ConvertReport{Outcomes: outcomes, RescanRoot: root.String()}
	for _, o := range outcomes {
		if o.Succeeded() {
			report.Succeeded++
			if execute && !o.Skipped && o.RelativePath == RootRelativePath {
				report.RescanRoot = root.NormalizedPath()
			}
		} else {
			report.Failed++
		}
	}

	if execute && operationID != 0 && s.database != nil {
		if err := s.recordOutcomes(root.String(), operationID, outcomes); err != nil {
			return report, err
		}
	}

	if execute {
		s.logger.Info("conversion complete", "succeeded", report.Succeeded, "failed", report.Failed)
	}
	return report, nil
}

func (s *NFCService) recordOutcomes(scanRoot string, operationID int64, outcomes []RenameOutcome) error {
	for _, o := range outcomes {
		record := &model.RenameRecord{
			ID:             s.idgen.New(),
			OperationID:    operationID,
			ScanRoot:       scanRoot,
			RelativePath:   o.RelativePath,
			Kind:           o.Kind.String(),
			OriginalName:   o.OriginalName,
			NormalizedName: o.AttemptedNewName,
			Status:         outcomeStatus(o),
			CreatedAt:      s.clock.Now(),
		}
		var rerr *RenameError
		if errors.As(o.Err, &rerr) {
			record.Detail = rerr.Detail()
		}
		if err := s.database.RecordRename(record); err != nil {
			return fmt.Errorf("recording rename of %s: %w", o.RelativePath, err)
		}
	}
	return nil
}

// outcomeStatus maps an outcome to its persisted status string.
func outcomeStatus(o RenameOutcome) string {
	switch {
	case o.Skipped:
		return model.StatusSkipped
	case o.Succeeded():
		return model.StatusSuccess
	default:
		return string(o.Reason())
	}
}
