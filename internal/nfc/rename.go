package nfc

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
)

// RenameOutcome is the result of renaming one selected node.
type RenameOutcome struct {
	RelativePath     string
	Kind             Kind
	OriginalName     string
	AttemptedNewName string
	// Skipped is set for nodes whose name is already NFC; nothing is renamed.
	Skipped bool
	// Err is nil on success, otherwise a *RenameError.
	Err error
}

// Succeeded reports whether the rename succeeded or was not needed.
func (o RenameOutcome) Succeeded() bool {
	return o.Err == nil
}

// Reason returns the failure reason, or "" on success.
func (o RenameOutcome) Reason() FailureReason {
	var rerr *RenameError
	if errors.As(o.Err, &rerr) {
		return rerr.Reason
	}
	if o.Err != nil {
		return ReasonIOError
	}
	return ""
}

// RenameExecutor applies NFC renames to selected nodes.
type RenameExecutor struct {
	fsmgr  FilesystemManager
	logger Logger
}

// NewRenameExecutor creates a RenameExecutor.
func NewRenameExecutor(fsmgr FilesystemManager, logger Logger) *RenameExecutor {
	return &RenameExecutor{fsmgr: fsmgr, logger: logger}
}

// Apply renames every selected node to its normalized name and returns one
// outcome per node, in the order given. Failures never stop the batch.
//
// Paths are derived from scanRoot and each node's RelativePath as recorded
// at scan time. Renames run deepest first so that renaming a folder never
// invalidates a pending rename inside it; outcomes are still reported in
// selection order.
func (e *RenameExecutor) Apply(selected []*CandidateNode, scanRoot string) []RenameOutcome {
	return e.run(selected, scanRoot, true)
}

// Plan performs every check Apply would make without renaming anything.
func (e *RenameExecutor) Plan(selected []*CandidateNode, scanRoot string) []RenameOutcome {
	return e.run(selected, scanRoot, false)
}

func (e *RenameExecutor) run(selected []*CandidateNode, scanRoot string, execute bool) []RenameOutcome {
	outcomes := make([]RenameOutcome, len(selected))
	for i, node := range selected {
		outcomes[i] = RenameOutcome{
			RelativePath:     node.RelativePath,
			Kind:             node.Kind,
			OriginalName:     node.OriginalName,
			AttemptedNewName: node.NormalizedName,
		}
	}

	for _, i := range executionOrder(selected) {
		node := selected[i]
		if node.OriginalName == node.NormalizedName {
			outcomes[i].Skipped = true
			continue
		}
		outcomes[i].Err = e.renameOne(node, scanRoot, execute)
	}
	return outcomes
}

func (e *RenameExecutor) renameOne(node *CandidateNode, scanRoot string, execute bool) error {
	src := ResolveRelative(scanRoot, node.RelativePath)
	dst := filepath.Join(filepath.Dir(src), node.NormalizedName)

	srcInfo, err := e.fsmgr.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("rename source missing", "path", node.RelativePath)
			return &RenameError{Reason: ReasonNotFound, Path: node.RelativePath, Err: err}
		}
		return &RenameError{Reason: ReasonIOError, Path: node.RelativePath, Err: err}
	}

	dstInfo, err := e.fsmgr.Lstat(dst)
	switch {
	case err == nil:
		// Normalization-insensitive filesystems resolve the NFC name to the
		// source entry itself; that is not a conflict.
		if !e.fsmgr.SameFile(srcInfo, dstInfo) {
			e.logger.Warn("rename target exists", "path", node.RelativePath, "target", node.NormalizedName)
			return &RenameError{Reason: ReasonTargetExists, Path: node.RelativePath}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return &RenameError{Reason: ReasonIOError, Path: node.RelativePath, Err: err}
	}

	if !execute {
		return nil
	}

	e.logger.Info("renaming", "from", src, "to", dst)
	if err := e.fsmgr.Rename(src, dst); err != nil {
		e.logger.Error("rename failed", "path", node.RelativePath, "error", err)
		return &RenameError{Reason: ReasonIOError, Path: node.RelativePath, Err: err}
	}
	return nil
}

// executionOrder returns indices into selected, deepest relative path first.
// Nodes at the same depth keep their selection order.
func executionOrder(selected []*CandidateNode) []int {
	order := make([]int, len(selected))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return relativeDepth(selected[order[a]].RelativePath) > relativeDepth(selected[order[b]].RelativePath)
	})
	return order
}
