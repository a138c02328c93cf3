package nfc

import (
	"path"
	"path/filepath"
	"strings"
)

// RootRelativePath is the relative path of the scan root itself.
const RootRelativePath = "."

// Kind distinguishes folders from files in a candidate tree.
type Kind int

const (
	KindFolder Kind = iota
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// CandidateNode is one filesystem entry retained by a scan.
//
// A node is present in a scan result iff IsCandidate is true or at least
// one of its descendants is a candidate.
type CandidateNode struct {
	Kind           Kind
	OriginalName   string
	NormalizedName string
	// AbsolutePath is where the entry lived at scan time. Renames must
	// re-derive the path from RelativePath instead.
	AbsolutePath string
	// RelativePath is slash separated and relative to the scan root.
	// The root itself is RootRelativePath.
	RelativePath string
	IsCandidate  bool
	Children     []*CandidateNode
}

func newCandidateNode(kind Kind, name, absPath, relPath string) *CandidateNode {
	normalized := Normalize(name)
	return &CandidateNode{
		Kind:           kind,
		OriginalName:   name,
		NormalizedName: normalized,
		AbsolutePath:   absPath,
		RelativePath:   relPath,
		IsCandidate:    normalized != name,
	}
}

// retained reports whether the node survives pruning.
func (n *CandidateNode) retained() bool {
	return n.IsCandidate || len(n.Children) > 0
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *CandidateNode) Walk(fn func(node *CandidateNode, depth int) bool) {
	type item struct {
		node  *CandidateNode
		depth int
	}
	stack := []item{{n, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.depth) {
			continue
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
}

// CountCandidates returns the number of nodes in the subtree that need renaming.
func (n *CandidateNode) CountCandidates() int {
	if n == nil {
		return 0
	}
	count := 0
	n.Walk(func(node *CandidateNode, _ int) bool {
		if node.IsCandidate {
			count++
		}
		return true
	})
	return count
}

// joinRelative appends name to a slash-separated relative path.
func joinRelative(parent, name string) string {
	if parent == RootRelativePath || parent == "" {
		return name
	}
	return path.Join(parent, name)
}

// relativeDepth returns the number of path elements in a relative path;
// the root has depth zero.
func relativeDepth(rel string) int {
	if rel == RootRelativePath || rel == "" {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

// ResolveRelative joins a scan root with a slash-separated relative path.
func ResolveRelative(scanRoot, rel string) string {
	if rel == RootRelativePath || rel == "" {
		return filepath.Clean(scanRoot)
	}
	return filepath.Join(scanRoot, filepath.FromSlash(rel))
}
