package syntax

import "github.com/dhamidi/oak/source"

// RedNode is a green node placed at an absolute offset. Red nodes are cheap
// values built while walking down from the root; they are not meant to be
// kept across edits.
type RedNode[T TokenKind, E ElementKind] struct {
	Green  *GreenNode[T, E]
	Offset int
}

// RedLeaf is a leaf placed at an absolute offset.
type RedLeaf[T TokenKind] struct {
	Kind T
	Span source.Span
}

// RedChild is a positioned child of a red node.
type RedChild[T TokenKind, E ElementKind] struct {
	Green  GreenChild[T, E]
	Offset int
}

func NewRoot[T TokenKind, E ElementKind](green *GreenNode[T, E]) RedNode[T, E] {
	return RedNode[T, E]{Green: green}
}

func (n RedNode[T, E]) Kind() E {
	return n.Green.kind
}

func (n RedNode[T, E]) Span() source.Span {
	return source.Span{Start: n.Offset, End: n.Offset + n.Green.length}
}

func (n RedNode[T, E]) ChildCount() int {
	return len(n.Green.children)
}

// OffsetOfChild returns the absolute start offset of child i.
func (n RedNode[T, E]) OffsetOfChild(i int) int {
	offset := n.Offset
	for _, c := range n.Green.children[:i] {
		offset += c.Len()
	}
	return offset
}

func (n RedNode[T, E]) Child(i int) RedChild[T, E] {
	return RedChild[T, E]{Green: n.Green.children[i], Offset: n.OffsetOfChild(i)}
}

// Children returns all children with their absolute offsets.
func (n RedNode[T, E]) Children() []RedChild[T, E] {
	out := make([]RedChild[T, E], len(n.Green.children))
	offset := n.Offset
	for i, c := range n.Green.children {
		out[i] = RedChild[T, E]{Green: c, Offset: offset}
		offset += c.Len()
	}
	return out
}

// ChildIndexAt returns the index of the child containing offset. An offset
// equal to the node's end resolves to the last child. It returns -1 when the
// offset lies outside the node or the node has no children.
func (n RedNode[T, E]) ChildIndexAt(offset int) int {
	span := n.Span()
	if offset < span.Start || offset > span.End || len(n.Green.children) == 0 {
		return -1
	}
	start := n.Offset
	for i, c := range n.Green.children {
		end := start + c.Len()
		if offset < end {
			return i
		}
		start = end
	}
	return len(n.Green.children) - 1
}

// Overlapping returns the children whose spans intersect span. Empty
// children at the boundary of span are included.
func (n RedNode[T, E]) Overlapping(span source.Span) []RedChild[T, E] {
	var out []RedChild[T, E]
	for _, c := range n.Children() {
		cs := c.Span()
		if cs.Start < span.End && cs.End > span.Start || cs.IsEmpty() && span.Touches(cs) {
			out = append(out, c)
		}
	}
	return out
}

func (c RedChild[T, E]) Span() source.Span {
	return source.Span{Start: c.Offset, End: c.Offset + c.Green.Len()}
}

func (c RedChild[T, E]) IsNode() bool {
	return c.Green.Node != nil
}

// Node returns the child as a red node when it is one.
func (c RedChild[T, E]) Node() (RedNode[T, E], bool) {
	if c.Green.Node == nil {
		return RedNode[T, E]{}, false
	}
	return RedNode[T, E]{Green: c.Green.Node, Offset: c.Offset}, true
}

// Leaf returns the child as a red leaf when it is one.
func (c RedChild[T, E]) Leaf() (RedLeaf[T], bool) {
	if c.Green.Node != nil {
		return RedLeaf[T]{}, false
	}
	return RedLeaf[T]{Kind: c.Green.Leaf.Kind, Span: c.Span()}, true
}

// CoveringPath returns the chain of elements from root down to the leaf
// containing offset. The first element is the root itself.
func CoveringPath[T TokenKind, E ElementKind](root RedNode[T, E], offset int) []RedChild[T, E] {
	path := []RedChild[T, E]{{Green: NodeChild(root.Green), Offset: root.Offset}}
	node := root
	for {
		i := node.ChildIndexAt(offset)
		if i < 0 {
			return path
		}
		child := node.Child(i)
		path = append(path, child)
		next, ok := child.Node()
		if !ok {
			return path
		}
		node = next
	}
}

// LeafAt returns the leaf containing offset.
func LeafAt[T TokenKind, E ElementKind](root RedNode[T, E], offset int) (RedLeaf[T], bool) {
	path := CoveringPath(root, offset)
	return path[len(path)-1].Leaf()
}

// Leaves returns every leaf of n with its absolute span.
func (n RedNode[T, E]) Leaves() []RedLeaf[T] {
	var out []RedLeaf[T]
	n.Green.WalkLeaves(func(offset int, leaf GreenLeaf[T]) bool {
		start := n.Offset + offset
		out = append(out, RedLeaf[T]{Kind: leaf.Kind, Span: source.Span{Start: start, End: start + leaf.Length}})
		return true
	})
	return out
}
