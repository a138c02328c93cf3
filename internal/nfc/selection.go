package nfc

import "fmt"

// SelectionNode decorates a CandidateNode with its checked state.
type SelectionNode struct {
	Candidate *CandidateNode
	Checked   bool
	Depth     int
	Parent    int // -1 for the root
	Children  []int
}

// Row is the read-only view of one node used for rendering.
type Row struct {
	ID             int
	Depth          int
	Kind           Kind
	OriginalName   string
	NormalizedName string
	RelativePath   string
	IsCandidate    bool
	Checked        bool
}

// SelectionTree holds the check state for one scan result. Node IDs are
// indices into a pre-order slice, so iterating IDs in order is a
// pre-order traversal. A SelectionTree is not safe for concurrent use.
type SelectionTree struct {
	nodes  []SelectionNode
	byPath map[string]int
}

// NewSelectionTree copies root into a new tree with every node unchecked.
// A nil root produces an empty tree.
func NewSelectionTree(root *CandidateNode) *SelectionTree {
	t := &SelectionTree{byPath: make(map[string]int)}
	if root == nil {
		return t
	}

	type item struct {
		node   *CandidateNode
		parent int
		depth  int
	}
	stack := []item{{node: root, parent: -1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := len(t.nodes)
		t.nodes = append(t.nodes, SelectionNode{
			Candidate: it.node,
			Depth:     it.depth,
			Parent:    it.parent,
		})
		if it.parent >= 0 {
			t.nodes[it.parent].Children = append(t.nodes[it.parent].Children, id)
		}
		t.byPath[it.node.RelativePath] = id

		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{node: it.node.Children[i], parent: id, depth: it.depth + 1})
		}
	}
	return t
}

// Len returns the number of nodes in the tree.
func (t *SelectionTree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node with the given ID.
func (t *SelectionTree) Node(id int) (SelectionNode, error) {
	if err := t.checkID(id); err != nil {
		return SelectionNode{}, err
	}
	return t.nodes[id], nil
}

// Find returns the ID of the node with the given relative path.
func (t *SelectionTree) Find(relativePath string) (int, bool) {
	id, ok := t.byPath[relativePath]
	return id, ok
}

// Toggle flips the node's checked state and writes the new value to every
// descendant.
func (t *SelectionTree) Toggle(id int) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	t.cascade(id, !t.nodes[id].Checked)
	return nil
}

// SetChecked sets the node and all of its descendants to checked.
func (t *SelectionTree) SetChecked(id int, checked bool) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	t.cascade(id, checked)
	return nil
}

// SetAll sets every node in the tree to checked.
func (t *SelectionTree) SetAll(checked bool) {
	for i := range t.nodes {
		t.nodes[i].Checked = checked
	}
}

// CollectChecked returns every checked node in pre-order. A checked
// folder and its checked children are all returned.
func (t *SelectionTree) CollectChecked() []*CandidateNode {
	var checked []*CandidateNode
	for i := range t.nodes {
		if t.nodes[i].Checked {
			checked = append(checked, t.nodes[i].Candidate)
		}
	}
	return checked
}

// CheckedCount returns the number of checked nodes.
func (t *SelectionTree) CheckedCount() int {
	count := 0
	for i := range t.nodes {
		if t.nodes[i].Checked {
			count++
		}
	}
	return count
}

// Rows returns the display view of the tree in pre-order.
func (t *SelectionTree) Rows() []Row {
	rows := make([]Row, len(t.nodes))
	for i, n := range t.nodes {
		rows[i] = Row{
			ID:             i,
			Depth:          n.Depth,
			Kind:           n.Candidate.Kind,
			OriginalName:   n.Candidate.OriginalName,
			NormalizedName: n.Candidate.NormalizedName,
			RelativePath:   n.Candidate.RelativePath,
			IsCandidate:    n.Candidate.IsCandidate,
			Checked:        n.Checked,
		}
	}
	return rows
}

// cascade overwrites the checked state of id and its whole subtree.
func (t *SelectionTree) cascade(id int, checked bool) {
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[cur].Checked = checked
		stack = append(stack, t.nodes[cur].Children...)
	}
}

func (t *SelectionTree) checkID(id int) error {
	if id < 0 || id >= len(t.nodes) {
		return fmt.Errorf("no node with id %d", id)
	}
	return nil
}
