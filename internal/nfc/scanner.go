package nfc

import (
	"io/fs"
	"path/filepath"
)

// ScanProblem records a directory that could not be listed. The directory
// is treated as empty and the scan carries on with its siblings.
type ScanProblem struct {
	RelativePath string
	Err          error
}

// ScanResult is the outcome of one scan.
type ScanResult struct {
	// Root is nil when nothing under the scan root needs renaming.
	Root     *CandidateNode
	Problems []ScanProblem
	// Entries counts every directory entry visited.
	Entries int
}

// CandidateCount returns the number of entries whose name is not NFC.
func (r *ScanResult) CandidateCount() int {
	return r.Root.CountCandidates()
}

// Scanner builds the filtered candidate tree for a directory.
type Scanner struct {
	fsmgr  FilesystemManager
	logger Logger
}

// NewScanner creates a Scanner.
func NewScanner(fsmgr FilesystemManager, logger Logger) *Scanner {
	return &Scanner{fsmgr: fsmgr, logger: logger}
}

// dirFrame is a directory whose entries are still being visited.
type dirFrame struct {
	node    *CandidateNode
	entries []fs.DirEntry
	next    int
}

// Scan walks root and returns the pruned candidate tree.
//
// Traversal is depth first with an explicit stack. A folder is attached to
// its parent only after all of its entries have been visited, so pruning
// sees the final set of retained children and listing order is preserved.
func (s *Scanner) Scan(root *Path) *ScanResult {
	result := &ScanResult{}

	rootNode := newCandidateNode(KindFolder, root.Name(), root.String(), RootRelativePath)
	stack := []*dirFrame{s.open(rootNode, root.String(), result)}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next == len(top.entries) {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 && top.node.retained() {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, top.node)
			}
			continue
		}

		entry := top.entries[top.next]
		top.next++
		result.Entries++

		name := entry.Name()
		relPath := joinRelative(top.node.RelativePath, name)
		absPath := filepath.Join(top.node.AbsolutePath, name)

		ignored, err := s.fsmgr.IsIgnored(relPath, root.String())
		if err != nil {
			s.logger.Warn("checking ignore rules failed", "path", relPath, "error", err)
		}
		if ignored {
			s.logger.Debug("entry ignored", "path", relPath)
			continue
		}

		mode := entry.Type()
		switch {
		case mode.IsDir():
			child := newCandidateNode(KindFolder, name, absPath, relPath)
			stack = append(stack, s.open(child, absPath, result))
		case mode.IsRegular(), mode&fs.ModeSymlink != 0:
			// Symlinks are renamed as links and never followed.
			if !IsCandidate(name) {
				continue
			}
			top.node.Children = append(top.node.Children, newCandidateNode(KindFile, name, absPath, relPath))
		default:
			s.logger.Debug("skipping special file", "path", relPath, "mode", mode.String())
		}
	}

	if rootNode.retained() {
		result.Root = rootNode
	}
	return result
}

// open lists a directory. Errors are recorded and the directory is
// treated as having no entries.
func (s *Scanner) open(node *CandidateNode, absPath string, result *ScanResult) *dirFrame {
	entries, err := s.fsmgr.ReadDir(absPath)
	if err != nil {
		s.logger.Warn("cannot read directory", "path", absPath, "error", err)
		result.Problems = append(result.Problems, ScanProblem{RelativePath: node.RelativePath, Err: err})
		entries = nil
	}
	return &dirFrame{node: node, entries: entries}
}
