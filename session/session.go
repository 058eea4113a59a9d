// Package session keeps the latest parse of a document and re-parses it
// incrementally after edits.
//
// A session is Clean when its tree matches its text. Apply and Replace
// change the text and make it Stale; Reparse brings it back to Clean,
// reusing tokens and subtrees the edits did not touch.
package session

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/parser"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

var log = commonlog.GetLogger("oak.session")

type State int

const (
	Clean State = iota
	Stale
)

func (s State) String() string {
	if s == Clean {
		return "clean"
	}
	return "stale"
}

// Parser parses a whole document. edits describe how the text changed since
// the tree held by cache was produced, in the coordinates of the old text.
type Parser[T syntax.TokenKind, E syntax.ElementKind] interface {
	Parse(src source.Source, edits []source.TextEdit, cache parser.Cache[T, E]) diag.Result[*syntax.GreenNode[T, E]]
}

// Session is the parse state of one document. It is not safe for
// concurrent use.
type Session[T syntax.TokenKind, E syntax.ElementKind] struct {
	parser Parser[T, E]
	text   *source.Text
	state  State

	// parsed is the text the tree was built from.
	parsed string
	tree   *syntax.GreenNode[T, E]
	tokens []syntax.Token[T]
	diags  []*diag.Error
	err    error

	lexDiags      []*diag.Error
	stagedTokens  []syntax.Token[T]
	stagedLexDiag []*diag.Error
	staged        bool
}

// New parses text and returns a clean session.
func New[T syntax.TokenKind, E syntax.ElementKind](p Parser[T, E], origin, text string) *Session[T, E] {
	s := &Session[T, E]{
		parser: p,
		text:   source.NewWithOrigin(origin, text),
		state:  Stale,
	}
	s.Reparse()
	return s
}

func (s *Session[T, E]) State() State {
	return s.state
}

// Text returns the current text, which may be ahead of the tree.
func (s *Session[T, E]) Text() *source.Text {
	return s.text
}

// Apply applies one batch of edits in the coordinates of the current text.
func (s *Session[T, E]) Apply(edits ...source.TextEdit) (source.Span, error) {
	affected, err := s.text.ApplyEdits(edits)
	if err != nil {
		return source.Span{}, fmt.Errorf("apply edits: %w", err)
	}
	if len(edits) > 0 {
		s.state = Stale
	}
	return affected, nil
}

// Replace swaps the whole text.
func (s *Session[T, E]) Replace(text string) {
	if text == s.text.String() {
		return
	}
	s.text = source.NewWithOrigin(s.text.Origin(), text)
	s.state = Stale
}

// Reparse brings a stale session up to date and returns the new result. A
// clean session returns its current result.
func (s *Session[T, E]) Reparse() diag.Result[*syntax.GreenNode[T, E]] {
	if s.state == Clean {
		return s.result()
	}

	var edits []source.TextEdit
	if s.tree != nil {
		edits = []source.TextEdit{Normalize(s.parsed, s.text.String())}
	}

	s.staged = false
	res := s.parser.Parse(s.text, edits, s)
	if s.staged {
		s.tokens = s.stagedTokens
		s.lexDiags = s.stagedLexDiag
	} else {
		s.tokens = nil
		s.lexDiags = nil
	}
	s.stagedTokens, s.stagedLexDiag, s.staged = nil, nil, false

	s.tree = res.Value
	s.diags = res.Diagnostics
	s.err = res.Err
	s.parsed = s.text.String()
	s.state = Clean

	if len(edits) > 0 {
		log.Debugf("reparsed %s: edit %v, %d tokens, %d diagnostics", s.text.Origin(), edits[0].Span, len(s.tokens), len(s.diags))
	}
	return s.result()
}

func (s *Session[T, E]) result() diag.Result[*syntax.GreenNode[T, E]] {
	return diag.Result[*syntax.GreenNode[T, E]]{Value: s.tree, Err: s.err, Diagnostics: s.diags}
}

// Tree returns the tree of the last parse.
func (s *Session[T, E]) Tree() *syntax.GreenNode[T, E] {
	return s.tree
}

// Tokens returns the token stream of the last parse.
func (s *Session[T, E]) Tokens() []syntax.Token[T] {
	return s.tokens
}

func (s *Session[T, E]) Diagnostics() []*diag.Error {
	return s.diags
}

// Err returns the unrecoverable error of the last parse, if any.
func (s *Session[T, E]) Err() error {
	return s.err
}

// CachedTokens returns the tokens of the previous parse until Reparse
// completes.
func (s *Session[T, E]) CachedTokens() []syntax.Token[T] {
	return s.tokens
}

func (s *Session[T, E]) CachedLexDiagnostics() []*diag.Error {
	return s.lexDiags
}

func (s *Session[T, E]) CachedTree() *syntax.GreenNode[T, E] {
	return s.tree
}

// SetLexOutput stages the new token stream; it replaces the cached one once
// the parse finishes.
func (s *Session[T, E]) SetLexOutput(tokens []syntax.Token[T], diags []*diag.Error) {
	s.stagedTokens = tokens
	s.stagedLexDiag = diags
	s.staged = true
}

// Normalize returns a single edit, in the coordinates of before, that turns
// before into after. It trims the common prefix and suffix.
func Normalize(before, after string) source.TextEdit {
	n := min(len(before), len(after))
	prefix := 0
	for prefix < n && before[prefix] == after[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < n-prefix && before[len(before)-1-suffix] == after[len(after)-1-suffix] {
		suffix++
	}
	return source.TextEdit{
		Span: source.Span{Start: prefix, End: len(before) - suffix},
		Text: after[prefix : len(after)-suffix],
	}
}
