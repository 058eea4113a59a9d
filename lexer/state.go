// Package lexer provides the scanning state shared by every language lexer,
// the common scanners for whitespace, comments, strings, identifiers and
// numbers, and incremental re-lexing from a cache of previous tokens.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// EOF is returned by the peek functions at the end of input.
const EOF rune = -1

// DefaultLookahead is the number of bytes past a token's end that a scanner
// may have inspected to decide where the token ends.
const DefaultLookahead = 4

// Kinds names the token kinds the state emits on its own.
type Kinds[T syntax.TokenKind] struct {
	EOF   T
	Error T
}

// Cache hands the previous token stream to a lexer and receives the new one.
type Cache[T syntax.TokenKind] interface {
	CachedTokens() []syntax.Token[T]
	CachedLexDiagnostics() []*diag.Error
	SetLexOutput(tokens []syntax.Token[T], diags []*diag.Error)
}

type Option func(*config)

type config struct {
	budget    int
	lookahead int
}

// WithStepBudget limits the number of NotAtEnd iterations. When the budget
// runs out the rest of the input becomes a single error token.
func WithStepBudget(steps int) Option {
	return func(c *config) {
		c.budget = steps
	}
}

// WithLookahead sets how many bytes past a token's end the language's
// scanners may inspect.
func WithLookahead(n int) Option {
	return func(c *config) {
		c.lookahead = n
	}
}

// State is the scanning state of one lexer run.
type State[T syntax.TokenKind] struct {
	src       source.Source
	text      string
	pos       int
	kinds     Kinds[T]
	tokens    []syntax.Token[T]
	diags     []*diag.Error
	budget    int
	lookahead int
	exhausted bool
	reused    int
}

func NewState[T syntax.TokenKind](src source.Source, kinds Kinds[T], opts ...Option) *State[T] {
	cfg := config{budget: -1, lookahead: DefaultLookahead}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &State[T]{
		src:       src,
		text:      src.String(),
		kinds:     kinds,
		budget:    cfg.budget,
		lookahead: cfg.lookahead,
	}
}

// Source returns the text being scanned.
func (s *State[T]) Source() source.Source {
	return s.src
}

func (s *State[T]) Position() int {
	return s.pos
}

func (s *State[T]) SetPosition(pos int) {
	s.pos = pos
}

func (s *State[T]) Len() int {
	return len(s.text)
}

// Rest returns the unscanned text.
func (s *State[T]) Rest() string {
	return s.text[s.pos:]
}

// Peek returns the character at the current position.
func (s *State[T]) Peek() rune {
	return s.PeekNextN(0)
}

// PeekNext returns the character after the current one.
func (s *State[T]) PeekNext() rune {
	return s.PeekNextN(1)
}

// PeekNextN returns the character n characters ahead of the current one.
func (s *State[T]) PeekNextN(n int) rune {
	i := s.pos
	for ; n > 0 && i < len(s.text); n-- {
		_, size := utf8.DecodeRuneInString(s.text[i:])
		i += size
	}
	if i >= len(s.text) {
		return EOF
	}
	r, _ := utf8.DecodeRuneInString(s.text[i:])
	return r
}

// PeekByte returns the byte at offset n from the current position, or 0.
func (s *State[T]) PeekByte(n int) byte {
	if s.pos+n >= len(s.text) {
		return 0
	}
	return s.text[s.pos+n]
}

// Advance moves forward by n bytes and returns the new position.
func (s *State[T]) Advance(n int) int {
	s.pos += n
	if s.pos > len(s.text) {
		s.pos = len(s.text)
	}
	return s.pos
}

// Bump consumes one character and returns it.
func (s *State[T]) Bump() rune {
	if s.pos >= len(s.text) {
		return EOF
	}
	r, size := utf8.DecodeRuneInString(s.text[s.pos:])
	s.pos += size
	return r
}

func (s *State[T]) StartsWith(prefix string) bool {
	return strings.HasPrefix(s.text[s.pos:], prefix)
}

// ConsumeIfStartsWith consumes prefix if the remaining text starts with it.
func (s *State[T]) ConsumeIfStartsWith(prefix string) bool {
	if !s.StartsWith(prefix) {
		return false
	}
	s.pos += len(prefix)
	return true
}

// TakeWhile consumes characters while pred holds and returns the number of
// bytes consumed.
func (s *State[T]) TakeWhile(pred func(rune) bool) int {
	start := s.pos
	for s.pos < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		if !pred(r) {
			break
		}
		s.pos += size
	}
	return s.pos - start
}

func (s *State[T]) AddToken(kind T, start, end int) {
	s.tokens = append(s.tokens, syntax.Token[T]{Kind: kind, Span: source.Span{Start: start, End: end}})
}

// AddTokenFrom adds a token from start to the current position.
func (s *State[T]) AddTokenFrom(kind T, start int) {
	s.AddToken(kind, start, s.pos)
}

func (s *State[T]) AddError(err *diag.Error) {
	s.diags = append(s.diags, err)
}

// Tokens returns the tokens emitted so far.
func (s *State[T]) Tokens() []syntax.Token[T] {
	return s.tokens
}

// NotAtEnd reports whether input remains. Each call consumes one step of the
// budget; when it runs out, a diagnostic is recorded, the remaining input is
// emitted as one error token and NotAtEnd returns false.
func (s *State[T]) NotAtEnd() bool {
	if s.pos >= len(s.text) {
		return false
	}
	if s.budget == 0 {
		if !s.exhausted {
			s.exhausted = true
			s.AddError(diag.Custom(s.src, s.pos, "lexer step budget exhausted"))
			s.AddToken(s.kinds.Error, s.pos, len(s.text))
			s.pos = len(s.text)
		}
		return false
	}
	if s.budget > 0 {
		s.budget--
	}
	return true
}

// AdvanceIfDeadlock forces progress when no scanner consumed anything since
// safePoint: one character becomes an error token and an unexpected
// character diagnostic is recorded.
func (s *State[T]) AdvanceIfDeadlock(safePoint int) {
	if s.pos != safePoint || s.pos >= len(s.text) {
		return
	}
	r := s.Bump()
	s.AddToken(s.kinds.Error, safePoint, s.pos)
	s.AddError(diag.UnexpectedCharacter(s.src, safePoint, r))
}

// AddEOF appends the zero-length end-of-input token.
func (s *State[T]) AddEOF() {
	s.AddToken(s.kinds.EOF, len(s.text), len(s.text))
}

// Reused returns the number of tokens taken over from a cache.
func (s *State[T]) Reused() int {
	return s.reused
}

// Finish returns the token stream and diagnostics. It appends the EOF
// token if the lexer has not.
func (s *State[T]) Finish() diag.Result[[]syntax.Token[T]] {
	if n := len(s.tokens); n == 0 || s.tokens[n-1].Kind != s.kinds.EOF {
		s.AddEOF()
	}
	diag.Sort(s.diags)
	return diag.Ok(s.tokens, s.diags)
}

// FinishWithCache is Finish followed by handing the output to cache.
func (s *State[T]) FinishWithCache(cache Cache[T]) diag.Result[[]syntax.Token[T]] {
	res := s.Finish()
	if cache != nil {
		cache.SetLexOutput(res.Value, res.Diagnostics)
	}
	return res
}
