// Package format renders syntax trees for people and programs.
package format

import (
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Node is a language-independent snapshot of a syntax tree element.
type Node struct {
	Kind     string
	Role     string
	Token    bool
	Trivia   bool
	Error    bool
	Span     source.Span
	Start    source.Location
	End      source.Location
	Text     string
	Children []*Node
}

// Options controls what a snapshot includes.
type Options struct {
	Trivia bool
}

// FromTree snapshots root, whose text is src.
func FromTree[T syntax.TokenKind, E syntax.ElementKind](src source.Source, root *syntax.GreenNode[T, E], opts Options) *Node {
	return fromRed(src, syntax.NewRoot(root), opts)
}

func fromRed[T syntax.TokenKind, E syntax.ElementKind](src source.Source, n syntax.RedNode[T, E], opts Options) *Node {
	span := n.Span()
	out := &Node{
		Kind:  n.Kind().String(),
		Role:  n.Kind().Role().String(),
		Error: n.Kind().Role() == syntax.ElementRoleError,
		Span:  span,
		Start: src.Location(span.Start),
		End:   src.Location(span.End),
	}
	for _, c := range n.Children() {
		if cn, ok := c.Node(); ok {
			out.Children = append(out.Children, fromRed(src, cn, opts))
			continue
		}
		leaf, _ := c.Leaf()
		role := leaf.Kind.Role()
		if role.IsTrivia() && !opts.Trivia {
			continue
		}
		out.Children = append(out.Children, &Node{
			Kind:   leaf.Kind.String(),
			Role:   role.String(),
			Token:  true,
			Trivia: role.IsTrivia(),
			Error:  role == syntax.TokenRoleError,
			Span:   leaf.Span,
			Start:  src.Location(leaf.Span.Start),
			End:    src.Location(leaf.Span.End),
			Text:   src.TextIn(leaf.Span),
		})
	}
	return out
}

// Tokens snapshots a token stream as a flat list of token nodes.
func Tokens[T syntax.TokenKind](src source.Source, tokens []syntax.Token[T]) []*Node {
	out := make([]*Node, 0, len(tokens))
	for _, tok := range tokens {
		role := tok.Kind.Role()
		out = append(out, &Node{
			Kind:   tok.Kind.String(),
			Role:   role.String(),
			Token:  true,
			Trivia: role.IsTrivia(),
			Error:  role == syntax.TokenRoleError,
			Span:   tok.Span,
			Start:  src.Location(tok.Span.Start),
			End:    src.Location(tok.Span.End),
			Text:   src.TextIn(tok.Span),
		})
	}
	return out
}
