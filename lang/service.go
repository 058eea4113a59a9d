package lang

import (
	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/format"
	"github.com/dhamidi/oak/session"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Service is a language with its kinds erased, for servers and tools that
// handle several languages.
type Service interface {
	Info() Info
	// Open starts an incremental session for a document.
	Open(uri, text string) Document
	// Tokens lexes text once.
	Tokens(uri, text string) ([]*format.Node, []*diag.Error)
}

// Document is an open document. Queries re-parse first when the text
// changed since the last parse.
type Document interface {
	Source() *source.Text
	Apply(edits ...source.TextEdit) error
	Replace(text string)
	Diagnostics() []*diag.Error
	Err() error
	Tree(opts format.Options) *format.Node
	Hover(offset int) (Hover, bool)
	Symbols() []Symbol
	Definition(offset int) (source.Span, bool)
	References(offset int) []source.Span
	Completions(offset int) []Completion
}

type service[T syntax.TokenKind, E syntax.ElementKind] struct {
	lang Language[T, E]
}

// NewService erases the kinds of a language.
func NewService[T syntax.TokenKind, E syntax.ElementKind](l Language[T, E]) Service {
	return &service[T, E]{lang: l}
}

func (s *service[T, E]) Info() Info {
	return s.lang.Info()
}

func (s *service[T, E]) Open(uri, text string) Document {
	return &document[T, E]{
		info: s.lang.Info(),
		sess: session.New[T, E](s.lang, uri, text),
	}
}

func (s *service[T, E]) Tokens(uri, text string) ([]*format.Node, []*diag.Error) {
	src := source.NewWithOrigin(uri, text)
	res := s.lang.Lex(src, nil, nil)
	return format.Tokens(src, res.Value), res.Diagnostics
}

type document[T syntax.TokenKind, E syntax.ElementKind] struct {
	info Info
	sess *session.Session[T, E]
}

func (d *document[T, E]) Source() *source.Text {
	return d.sess.Text()
}

func (d *document[T, E]) Apply(edits ...source.TextEdit) error {
	_, err := d.sess.Apply(edits...)
	return err
}

func (d *document[T, E]) Replace(text string) {
	d.sess.Replace(text)
}

func (d *document[T, E]) query() *query[T, E] {
	d.sess.Reparse()
	return &query[T, E]{src: d.sess.Text(), root: syntax.NewRoot(d.sess.Tree())}
}

func (d *document[T, E]) Diagnostics() []*diag.Error {
	return d.sess.Reparse().Diagnostics
}

func (d *document[T, E]) Err() error {
	return d.sess.Reparse().Err
}

func (d *document[T, E]) Tree(opts format.Options) *format.Node {
	d.sess.Reparse()
	return format.FromTree(d.sess.Text(), d.sess.Tree(), opts)
}

func (d *document[T, E]) Hover(offset int) (Hover, bool) {
	return d.query().hover(offset)
}

func (d *document[T, E]) Symbols() []Symbol {
	q := d.query()
	return q.symbols(q.root)
}

func (d *document[T, E]) Definition(offset int) (source.Span, bool) {
	b, ok := d.query().definition(offset)
	return b.span, ok
}

func (d *document[T, E]) References(offset int) []source.Span {
	return d.query().references(offset)
}

func (d *document[T, E]) Completions(offset int) []Completion {
	return d.query().completions(offset, d.info.Keywords)
}
