package lang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Symbol is a definition found in a document.
type Symbol struct {
	Name     string
	Kind     string
	Span     source.Span
	NameSpan source.Span
	Children []Symbol
}

// Hover describes the element under a position.
type Hover struct {
	Span     source.Span
	Markdown string
}

// Completion is a suggested word.
type Completion struct {
	Label   string
	Keyword bool
}

type query[T syntax.TokenKind, E syntax.ElementKind] struct {
	src  source.Source
	root syntax.RedNode[T, E]
}

type binder[T syntax.TokenKind, E syntax.ElementKind] struct {
	node  syntax.RedNode[T, E]
	name  string
	span  source.Span
	scope source.Span
}

// firstLeaf returns the first significant leaf of n.
func firstLeaf[T syntax.TokenKind, E syntax.ElementKind](n syntax.RedNode[T, E]) (syntax.RedLeaf[T], bool) {
	for _, leaf := range n.Leaves() {
		if !leaf.Kind.Role().IsTrivia() {
			return leaf, true
		}
	}
	return syntax.RedLeaf[T]{}, false
}

// nameOf returns the span of the name a definition introduces: its first
// direct name token, or the first token of its first direct name element.
func (q *query[T, E]) nameOf(n syntax.RedNode[T, E]) (source.Span, bool) {
	for _, c := range n.Children() {
		if leaf, ok := c.Leaf(); ok {
			if leaf.Kind.Role() == syntax.TokenRoleName {
				return leaf.Span, true
			}
			continue
		}
		cn, _ := c.Node()
		if cn.Kind().Role() == syntax.ElementRoleName {
			if leaf, ok := firstLeaf(cn); ok {
				return leaf.Span, true
			}
		}
	}
	return source.Span{}, false
}

func (q *query[T, E]) symbols(n syntax.RedNode[T, E]) []Symbol {
	var out []Symbol
	for _, c := range n.Children() {
		cn, ok := c.Node()
		if !ok {
			continue
		}
		if cn.Kind().Role() != syntax.ElementRoleDefinition {
			out = append(out, q.symbols(cn)...)
			continue
		}
		sym := Symbol{Kind: cn.Kind().String(), Span: cn.Span(), Children: q.symbols(cn)}
		if span, ok := q.nameOf(cn); ok {
			sym.Name = q.src.TextIn(span)
			sym.NameSpan = span
		} else {
			sym.Name = cn.Kind().String()
			sym.NameSpan = source.Span{Start: cn.Offset, End: cn.Offset}
		}
		out = append(out, sym)
	}
	return out
}

// nameAt returns the name token at offset, or the one ending at offset.
func (q *query[T, E]) nameAt(offset int) (syntax.RedLeaf[T], bool) {
	for _, o := range []int{offset, offset - 1} {
		if o < 0 {
			continue
		}
		leaf, ok := syntax.LeafAt(q.root, o)
		if ok && leaf.Kind.Role() == syntax.TokenRoleName && leaf.Span.Start <= offset && offset <= leaf.Span.End {
			return leaf, true
		}
	}
	return syntax.RedLeaf[T]{}, false
}

// binders collects every definition and binding with its name and the
// span of the nearest enclosing scope.
func (q *query[T, E]) binders() []binder[T, E] {
	var out []binder[T, E]
	var walk func(n syntax.RedNode[T, E], scope source.Span)
	walk = func(n syntax.RedNode[T, E], scope source.Span) {
		for _, c := range n.Children() {
			cn, ok := c.Node()
			if !ok {
				continue
			}
			role := cn.Kind().Role()
			if role == syntax.ElementRoleDefinition || role == syntax.ElementRoleBinding {
				if span, ok := q.nameOf(cn); ok {
					out = append(out, binder[T, E]{node: cn, name: q.src.TextIn(span), span: span, scope: scope})
				}
			}
			inner := scope
			if role == syntax.ElementRoleDefinition || role == syntax.ElementRoleContainer {
				inner = cn.Span()
			}
			walk(cn, inner)
		}
	}
	walk(q.root, q.root.Span())
	return out
}

// definition resolves the name at offset to the binder it most likely
// refers to: the one in the innermost enclosing scope, preferring the last
// one introduced before offset.
func (q *query[T, E]) definition(offset int) (binder[T, E], bool) {
	leaf, ok := q.nameAt(offset)
	if !ok {
		return binder[T, E]{}, false
	}
	name := q.src.TextIn(leaf.Span)

	var best binder[T, E]
	found, inScope := false, false
	for _, b := range q.binders() {
		if b.name != name {
			continue
		}
		if b.span == leaf.Span {
			return b, true
		}
		visible := b.scope.Start <= leaf.Span.Start && leaf.Span.End <= b.scope.End
		switch {
		case !found:
			best, found, inScope = b, true, visible
		case visible && !inScope:
			best, inScope = b, true
		case visible && inScope:
			narrower := b.scope.Len() < best.scope.Len()
			same := b.scope == best.scope
			if narrower || same && b.span.Start <= leaf.Span.Start && b.span.Start > best.span.Start {
				best = b
			}
		}
	}
	return best, found
}

// references returns every name token spelled like the one at offset.
func (q *query[T, E]) references(offset int) []source.Span {
	leaf, ok := q.nameAt(offset)
	if !ok {
		return nil
	}
	name := q.src.TextIn(leaf.Span)
	var out []source.Span
	for _, l := range q.root.Leaves() {
		if l.Kind.Role() == syntax.TokenRoleName && q.src.TextIn(l.Span) == name {
			out = append(out, l.Span)
		}
	}
	return out
}

func (q *query[T, E]) hover(offset int) (Hover, bool) {
	path := syntax.CoveringPath(q.root, offset)
	leaf, ok := path[len(path)-1].Leaf()
	if !ok || leaf.Kind.Role().IsTrivia() || leaf.Kind.Role() == syntax.TokenRoleEOF {
		return Hover{}, false
	}

	var b strings.Builder
	if len(path) >= 2 {
		if parent, ok := path[len(path)-2].Node(); ok {
			fmt.Fprintf(&b, "**%s** (%s)\n\n", parent.Kind(), parent.Kind().Role())
		}
	}
	fmt.Fprintf(&b, "`%s` %s (%s)", q.src.TextIn(leaf.Span), leaf.Kind, leaf.Kind.Role())
	if leaf.Kind.Role() == syntax.TokenRoleName {
		if def, ok := q.definition(offset); ok && def.span != leaf.Span {
			loc := q.src.Location(def.span.Start)
			fmt.Fprintf(&b, "\n\n%s defined at %s", def.node.Kind(), loc)
		}
	}
	return Hover{Span: leaf.Span, Markdown: b.String()}, true
}

func (q *query[T, E]) completions(offset int, keywords []string) []Completion {
	prefix := ""
	var current source.Span
	if leaf, ok := q.nameAt(offset); ok {
		current = leaf.Span
		prefix = q.src.TextIn(source.Span{Start: leaf.Span.Start, End: offset})
	}

	seen := map[string]bool{}
	var out []Completion
	for _, kw := range keywords {
		if strings.HasPrefix(kw, prefix) && !seen[kw] {
			seen[kw] = true
			out = append(out, Completion{Label: kw, Keyword: true})
		}
	}
	var names []string
	for _, l := range q.root.Leaves() {
		if l.Kind.Role() != syntax.TokenRoleName || l.Span == current {
			continue
		}
		text := q.src.TextIn(l.Span)
		if strings.HasPrefix(text, prefix) && !seen[text] {
			seen[text] = true
			names = append(names, text)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, Completion{Label: name})
	}
	return out
}
