package stats

// StatTreeNode accumulates Stats values under a hierarchy of named sources,
// e.g. ["Buildings"]["Library"]. Child order is the order of first insertion
// so report output stays stable between recomputes.
type StatTreeNode struct {
	childNames []string
	Children   map[string]*StatTreeNode
	Inner      *Stats
}

// NewStatTree builds an empty root node
func NewStatTree() *StatTreeNode {
	return &StatTreeNode{Children: make(map[string]*StatTreeNode)}
}

func (n *StatTreeNode) child(name string) *StatTreeNode {
	if c, ok := n.Children[name]; ok {
		return c
	}
	c := NewStatTree()
	n.Children[name] = c
	n.childNames = append(n.childNames, name)
	return c
}

// ChildNames returns the direct child names in insertion order
func (n *StatTreeNode) ChildNames() []string {
	out := make([]string, len(n.childNames))
	copy(out, n.childNames)
	return out
}

// Child returns the named direct child, or nil
func (n *StatTreeNode) Child(name string) *StatTreeNode {
	return n.Children[name]
}

// AddStats walks (creating as needed) the nodes along path and adds the
// stats at the leaf
func (n *StatTreeNode) AddStats(s *Stats, path ...string) {
	node := n
	for _, name := range path {
		node = node.child(name)
	}
	if node.Inner == nil {
		node.Inner = New()
	}
	node.Inner.Add(s)
}

// AddTree merges another tree additively, matching nodes by name
func (n *StatTreeNode) AddTree(other *StatTreeNode) {
	if other == nil {
		return
	}
	if other.Inner != nil {
		if n.Inner == nil {
			n.Inner = New()
		}
		n.Inner.Add(other.Inner)
	}
	for _, name := range other.childNames {
		n.child(name).AddTree(other.Children[name])
	}
}

// TotalStats sums this node's own stats plus all descendants'
func (n *StatTreeNode) TotalStats() *Stats {
	total := New()
	if n.Inner != nil {
		total.Add(n.Inner)
	}
	for _, name := range n.childNames {
		total.Add(n.Children[name].TotalStats())
	}
	return total
}

// Clone returns a deep copy
func (n *StatTreeNode) Clone() *StatTreeNode {
	out := NewStatTree()
	if n.Inner != nil {
		out.Inner = n.Inner.Clone()
	}
	for _, name := range n.childNames {
		out.childNames = append(out.childNames, name)
		out.Children[name] = n.Children[name].Clone()
	}
	return out
}

// Clear removes all children and stats in place, keeping the node usable
func (n *StatTreeNode) Clear() {
	n.childNames = n.childNames[:0]
	n.Children = make(map[string]*StatTreeNode)
	n.Inner = nil
}
