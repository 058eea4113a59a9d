package syntax

// GreenLeaf is a token inside the green tree. It stores only a kind and a
// length.
type GreenLeaf[T TokenKind] struct {
	Kind   T
	Length int
}

// GreenChild is either a nested node or a leaf.
type GreenChild[T TokenKind, E ElementKind] struct {
	Node *GreenNode[T, E]
	Leaf GreenLeaf[T]
}

func NodeChild[T TokenKind, E ElementKind](n *GreenNode[T, E]) GreenChild[T, E] {
	return GreenChild[T, E]{Node: n}
}

func LeafChild[T TokenKind, E ElementKind](kind T, length int) GreenChild[T, E] {
	return GreenChild[T, E]{Leaf: GreenLeaf[T]{Kind: kind, Length: length}}
}

func (c GreenChild[T, E]) IsNode() bool {
	return c.Node != nil
}

func (c GreenChild[T, E]) Len() int {
	if c.Node != nil {
		return c.Node.length
	}
	return c.Leaf.Length
}

func (c GreenChild[T, E]) hasErrors() bool {
	if c.Node != nil {
		return c.Node.hasErrors
	}
	return c.Leaf.Kind.Role() == TokenRoleError
}

// GreenNode is an immutable syntax node. It knows its kind, its children and
// the total length of the text it covers, but not where that text starts,
// so one node can be shared by several trees.
type GreenNode[T TokenKind, E ElementKind] struct {
	kind      E
	children  []GreenChild[T, E]
	length    int
	hasErrors bool
}

// NewNode builds a node over children. The node is marked as containing
// errors when its kind has the error role or any child contains errors.
func NewNode[T TokenKind, E ElementKind](kind E, children []GreenChild[T, E]) *GreenNode[T, E] {
	return NewNodeFlagged(kind, children, false)
}

// NewNodeFlagged is NewNode with an extra error mark, used for nodes that
// recorded a diagnostic without producing an error element.
func NewNodeFlagged[T TokenKind, E ElementKind](kind E, children []GreenChild[T, E], flagged bool) *GreenNode[T, E] {
	n := &GreenNode[T, E]{
		kind:      kind,
		children:  children,
		hasErrors: flagged || kind.Role() == ElementRoleError,
	}
	for _, c := range children {
		n.length += c.Len()
		if c.hasErrors() {
			n.hasErrors = true
		}
	}
	return n
}

func (n *GreenNode[T, E]) Kind() E {
	return n.kind
}

func (n *GreenNode[T, E]) Len() int {
	return n.length
}

func (n *GreenNode[T, E]) ChildCount() int {
	return len(n.children)
}

func (n *GreenNode[T, E]) Child(i int) GreenChild[T, E] {
	return n.children[i]
}

// Children returns the node's children. The slice must not be modified.
func (n *GreenNode[T, E]) Children() []GreenChild[T, E] {
	return n.children
}

// HasErrors reports whether the subtree contains an error element, an error
// token or a node that recorded a diagnostic.
func (n *GreenNode[T, E]) HasErrors() bool {
	return n.hasErrors
}

// WalkLeaves calls fn for every leaf in order with its offset relative to
// the start of n. Walking stops when fn returns false.
func (n *GreenNode[T, E]) WalkLeaves(fn func(offset int, leaf GreenLeaf[T]) bool) bool {
	return n.walkLeaves(0, fn)
}

func (n *GreenNode[T, E]) walkLeaves(offset int, fn func(int, GreenLeaf[T]) bool) bool {
	for _, c := range n.children {
		if c.Node != nil {
			if !c.Node.walkLeaves(offset, fn) {
				return false
			}
		} else if !fn(offset, c.Leaf) {
			return false
		}
		offset += c.Len()
	}
	return true
}

// LeafCount returns the number of leaves in the subtree.
func (n *GreenNode[T, E]) LeafCount() int {
	count := 0
	n.WalkLeaves(func(int, GreenLeaf[T]) bool {
		count++
		return true
	})
	return count
}

// Equal reports whether two subtrees have the same shape, kinds and lengths.
func Equal[T TokenKind, E ElementKind](a, b *GreenNode[T, E]) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.kind != b.kind || a.length != b.length || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		ca, cb := a.children[i], b.children[i]
		if ca.IsNode() != cb.IsNode() {
			return false
		}
		if ca.IsNode() {
			if !Equal(ca.Node, cb.Node) {
				return false
			}
		} else if ca.Leaf != cb.Leaf {
			return false
		}
	}
	return true
}
