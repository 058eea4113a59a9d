// Package lang ties a language's lexer and parser together and exposes it
// to editors and tools through a kind-independent Service.
//
// Editor features are syntactic: they are derived from the token and
// element roles a language assigns, never from semantic analysis.
package lang

import (
	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/lexer"
	"github.com/dhamidi/oak/parser"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Info describes a language.
type Info struct {
	// Name is the language identifier editors use, e.g. "json".
	Name string
	// Aliases are other names for the language, including the names
	// content detection reports.
	Aliases           []string
	Extensions        []string
	Keywords          []string
	TriggerCharacters []string
	// Grammar is an EBNF reference grammar starting at Start.
	Grammar string
	Start   string
	// Terminals maps the grammar's lexical productions to the token kinds
	// that carry them.
	Terminals map[string]string
}

type Lexer[T syntax.TokenKind] interface {
	Lex(src source.Source, edits []source.TextEdit, cache lexer.Cache[T]) diag.Result[[]syntax.Token[T]]
}

type Parser[T syntax.TokenKind, E syntax.ElementKind] interface {
	Parse(src source.Source, edits []source.TextEdit, cache parser.Cache[T, E]) diag.Result[*syntax.GreenNode[T, E]]
}

// Builder turns a parse into a typed syntax tree.
type Builder[T syntax.TokenKind, E syntax.ElementKind, A any] interface {
	Build(src source.Source, edits []source.TextEdit, cache parser.Cache[T, E]) diag.Result[A]
}

// Language is everything the engine needs to serve a language.
type Language[T syntax.TokenKind, E syntax.ElementKind] interface {
	Info() Info
	Lexer[T]
	Parser[T, E]
}
