package parser

import (
	"github.com/dhamidi/oak/lexer"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Cache hands the previous parse to a parser. The cached tokens and tree
// must be those of the text before the edits.
type Cache[T syntax.TokenKind, E syntax.ElementKind] interface {
	lexer.Cache[T]
	CachedTree() *syntax.GreenNode[T, E]
}

type reuseContext[T syntax.TokenKind, E syntax.ElementKind] struct {
	tree   *syntax.GreenNode[T, E]
	tokens []syntax.Token[T]
	edits  []source.TextEdit
}

// Incremental enables subtree reuse from the previous parse held by cache.
// Edits are in the coordinates of the previous text. Call it before the
// cache receives the new token stream. It does nothing when a step budget
// is set: reused subtrees consume no steps, so the budget would run out
// elsewhere than in a full parse.
func (st *State[T, E]) Incremental(cache Cache[T, E], edits []source.TextEdit) {
	if cache == nil || len(edits) == 0 || st.budget >= 0 {
		return
	}
	tree := cache.CachedTree()
	if tree == nil {
		return
	}
	sorted, err := source.SortEdits(edits, tree.Len())
	if err != nil {
		return
	}
	st.inc = &reuseContext[T, E]{tree: tree, tokens: cache.CachedTokens(), edits: sorted}
}

// toOld maps an offset in the new text to the old text. It reports false
// for offsets inside inserted text.
func (rc *reuseContext[T, E]) toOld(offset int) (int, bool) {
	shift := 0
	for _, e := range rc.edits {
		start := e.Span.Start + shift
		if offset < start {
			return offset - shift, true
		}
		if offset < start+len(e.Text) {
			return 0, false
		}
		shift += len(e.Text) - e.Span.Len()
	}
	return offset - shift, true
}

func (rc *reuseContext[T, E]) isDirty(span source.Span) bool {
	for _, e := range rc.edits {
		if span.Touches(e.Span) {
			return true
		}
	}
	return false
}

// find returns the outermost old node of the given kind that starts at
// offset.
func (rc *reuseContext[T, E]) find(offset int, kind E) *syntax.GreenNode[T, E] {
	node, start := rc.tree, 0
	for {
		var next *syntax.GreenNode[T, E]
		childStart := start
		for _, c := range node.Children() {
			end := childStart + c.Len()
			if childStart > offset {
				break
			}
			if c.Node != nil && offset < end {
				if childStart == offset && c.Node.Kind() == kind {
					return c.Node
				}
				next = c.Node
				break
			}
			childStart = end
		}
		if next == nil {
			return nil
		}
		node, start = next, childStart
	}
}

// nextKind returns the kind of the first significant old token starting
// at or after offset.
func (rc *reuseContext[T, E]) nextKind(offset int) (T, bool) {
	i := syntax.TokenIndexAt(rc.tokens, offset)
	for ; i >= 0 && i < len(rc.tokens); i++ {
		tok := rc.tokens[i]
		if tok.Span.Start >= offset && !tok.Kind.Role().IsTrivia() {
			return tok.Kind, true
		}
	}
	var zero T
	return zero, false
}

// TryReuse takes over the node of the given kind starting at the current
// position from the previous tree. The old node must lie outside every
// edit, contain no errors, match the new tokens leaf for leaf in kind and
// length, and be followed by a significant token of the same kind as before.
func (st *State[T, E]) TryReuse(kind E) bool {
	rc := st.inc
	if rc == nil || st.exhausted {
		return false
	}
	st.flushTrivia()
	if st.pos >= st.eof {
		return false
	}
	oldStart, ok := rc.toOld(st.tokens[st.pos].Span.Start)
	if !ok {
		return false
	}
	node := rc.find(oldStart, kind)
	if node == nil || node.Len() == 0 || node.HasErrors() {
		return false
	}
	oldSpan := source.Span{Start: oldStart, End: oldStart + node.Len()}
	if rc.isDirty(oldSpan) {
		return false
	}

	i := st.pos
	matched := node.WalkLeaves(func(_ int, leaf syntax.GreenLeaf[T]) bool {
		if i >= st.eof {
			return false
		}
		tok := st.tokens[i]
		if tok.Kind != leaf.Kind || tok.Len() != leaf.Length {
			return false
		}
		i++
		return true
	})
	if !matched {
		return false
	}
	j := i
	for st.isTrivia(j) {
		j++
	}
	if next, ok := rc.nextKind(oldSpan.End); !ok || next != st.tokens[j].Kind {
		return false
	}

	st.PushChild(node)
	st.pos = i
	st.reused++
	return true
}

// IncrementalNode reuses an unchanged node of the given kind or parses a
// new one with fn.
func (st *State[T, E]) IncrementalNode(kind E, fn func()) *syntax.GreenNode[T, E] {
	if st.TryReuse(kind) {
		return st.sink[len(st.sink)-1].Node
	}
	cp := st.Checkpoint()
	fn()
	return st.FinishAt(cp, kind)
}
