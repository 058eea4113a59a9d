// Package parser provides the state every grammar parses with: a token
// source over a lexed stream, a flat tree sink sealed into green nodes with
// checkpoints, error recording and recovery, reuse of unchanged subtrees
// from a previous parse, and a Pratt expression driver.
package parser

import (
	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Kinds names the kinds the state produces on its own.
type Kinds[T syntax.TokenKind, E syntax.ElementKind] struct {
	EOF   T
	Error E
}

type Option func(*config)

type config struct {
	budget int
}

// WithStepBudget limits the number of tokens consumed and NotAtEnd checks.
// Once exhausted the state behaves as if at end of input and the remaining
// tokens end up in an error node.
func WithStepBudget(steps int) Option {
	return func(c *config) {
		c.budget = steps
	}
}

// Checkpoint marks a position in the tree sink and the token stream.
type Checkpoint struct {
	sink  int
	pos   int
	diags int
}

// State is the parsing state of one parser run.
type State[T syntax.TokenKind, E syntax.ElementKind] struct {
	src       source.Source
	tokens    []syntax.Token[T]
	pos       int
	eof       int
	kinds     Kinds[T, E]
	sink      []syntax.GreenChild[T, E]
	diags     []*diag.Error
	budget    int
	exhausted bool
	inc       *reuseContext[T, E]
	reused    int
}

// NewState prepares to parse tokens, which must cover src contiguously.
// An EOF token is appended when the stream lacks one.
func NewState[T syntax.TokenKind, E syntax.ElementKind](src source.Source, tokens []syntax.Token[T], kinds Kinds[T, E], opts ...Option) *State[T, E] {
	cfg := config{budget: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if n := len(tokens); n == 0 || tokens[n-1].Kind != kinds.EOF {
		end := src.Len()
		tokens = append(tokens[:n:n], syntax.Token[T]{Kind: kinds.EOF, Span: source.Span{Start: end, End: end}})
	}
	return &State[T, E]{
		src:    src,
		tokens: tokens,
		eof:    len(tokens) - 1,
		kinds:  kinds,
		budget: cfg.budget,
	}
}

func (st *State[T, E]) Source() source.Source {
	return st.src
}

// Text returns the source text of tok.
func (st *State[T, E]) Text(tok syntax.Token[T]) string {
	return st.src.TextIn(tok.Span)
}

func (st *State[T, E]) isTrivia(i int) bool {
	return i < st.eof && st.tokens[i].Kind.Role().IsTrivia()
}

// nth returns the index of the n-th significant token from the current
// position, or the EOF index.
func (st *State[T, E]) nth(n int) int {
	if st.exhausted {
		return st.eof
	}
	i := st.pos
	for {
		for st.isTrivia(i) {
			i++
		}
		if n == 0 || i >= st.eof {
			return i
		}
		n--
		i++
	}
}

// Current returns the next significant token.
func (st *State[T, E]) Current() syntax.Token[T] {
	return st.tokens[st.nth(0)]
}

// Peek returns the kind of the next significant token.
func (st *State[T, E]) Peek() T {
	return st.Current().Kind
}

// Nth returns the kind of the n-th significant token ahead; Nth(0) is Peek.
func (st *State[T, E]) Nth(n int) T {
	return st.tokens[st.nth(n)].Kind
}

func (st *State[T, E]) At(kind T) bool {
	return st.Peek() == kind
}

func (st *State[T, E]) AtAny(kinds ...T) bool {
	cur := st.Peek()
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

func (st *State[T, E]) AtEOF() bool {
	return st.nth(0) >= st.eof
}

// Offset returns the start of the next significant token.
func (st *State[T, E]) Offset() int {
	return st.Current().Span.Start
}

// step consumes one unit of the budget and reports whether any was left.
func (st *State[T, E]) step() bool {
	if st.exhausted {
		return false
	}
	if st.budget == 0 {
		st.exhausted = true
		st.diags = append(st.diags, diag.Custom(st.src, st.tokens[st.pos].Span.Start, "parser step budget exhausted"))
		return false
	}
	if st.budget > 0 {
		st.budget--
	}
	return true
}

// NotAtEnd reports whether significant input remains.
func (st *State[T, E]) NotAtEnd() bool {
	if !st.step() {
		return false
	}
	return !st.AtEOF()
}

func (st *State[T, E]) flushTrivia() {
	for st.isTrivia(st.pos) {
		tok := st.tokens[st.pos]
		st.sink = append(st.sink, syntax.LeafChild[T, E](tok.Kind, tok.Len()))
		st.pos++
	}
}

// Bump consumes the next significant token along with the trivia before it.
// It does nothing at end of input.
func (st *State[T, E]) Bump() {
	if st.AtEOF() || !st.step() {
		return
	}
	st.flushTrivia()
	tok := st.tokens[st.pos]
	st.sink = append(st.sink, syntax.LeafChild[T, E](tok.Kind, tok.Len()))
	st.pos++
}

// Eat consumes the next token if it has the given kind.
func (st *State[T, E]) Eat(kind T) bool {
	if !st.At(kind) {
		return false
	}
	st.Bump()
	return true
}

// Expect consumes a token of the given kind or records an unexpected token
// diagnostic without consuming anything.
func (st *State[T, E]) Expect(kind T) bool {
	if st.Eat(kind) {
		return true
	}
	st.Unexpected(kind.String())
	return false
}

// AdvanceUntil consumes tokens until one of the given kind or end of input.
func (st *State[T, E]) AdvanceUntil(kind T) {
	st.AdvanceUntilAny(kind)
}

// AdvanceUntilAny consumes tokens until one of kinds or end of input.
func (st *State[T, E]) AdvanceUntilAny(kinds ...T) {
	for !st.AtEOF() && !st.AtAny(kinds...) {
		before := st.pos
		st.Bump()
		if st.pos == before {
			return
		}
	}
}

func (st *State[T, E]) Checkpoint() Checkpoint {
	st.flushTrivia()
	return Checkpoint{sink: len(st.sink), pos: st.pos, diags: len(st.diags)}
}

// CheckpointBefore returns a checkpoint that starts at an already built
// node, so a new parent can wrap it. A node not in the sink is pushed
// first.
func (st *State[T, E]) CheckpointBefore(node *syntax.GreenNode[T, E]) Checkpoint {
	for i := len(st.sink) - 1; i >= 0; i-- {
		if st.sink[i].Node == node {
			return Checkpoint{sink: i, pos: st.pos, diags: len(st.diags)}
		}
	}
	st.PushChild(node)
	return Checkpoint{sink: len(st.sink) - 1, pos: st.pos, diags: len(st.diags)}
}

// FinishAt seals everything pushed since cp into a node of the given kind.
// The node is flagged as erroneous when diagnostics were recorded since cp.
func (st *State[T, E]) FinishAt(cp Checkpoint, kind E) *syntax.GreenNode[T, E] {
	children := make([]syntax.GreenChild[T, E], len(st.sink)-cp.sink)
	copy(children, st.sink[cp.sink:])
	st.sink = st.sink[:cp.sink]
	node := syntax.NewNodeFlagged(kind, children, len(st.diags) > cp.diags)
	st.sink = append(st.sink, syntax.NodeChild(node))
	return node
}

// Restore rewinds the sink, the token position and the diagnostics to cp.
func (st *State[T, E]) Restore(cp Checkpoint) {
	st.sink = st.sink[:cp.sink]
	st.pos = cp.pos
	st.diags = st.diags[:cp.diags]
}

// PushChild appends an already built node to the sink.
func (st *State[T, E]) PushChild(node *syntax.GreenNode[T, E]) {
	st.sink = append(st.sink, syntax.NodeChild(node))
}

// TryParse runs fn and rewinds everything it did when it returns false.
func (st *State[T, E]) TryParse(fn func() bool) bool {
	cp := Checkpoint{sink: len(st.sink), pos: st.pos, diags: len(st.diags)}
	if fn() {
		return true
	}
	st.Restore(cp)
	return false
}

// AddDiagnostic records a diagnostic.
func (st *State[T, E]) AddDiagnostic(err *diag.Error) {
	st.diags = append(st.diags, err)
}

// Error records a syntax error at the next significant token.
func (st *State[T, E]) Error(msg string) {
	st.AddDiagnostic(diag.Syntax(st.src, st.Offset(), msg))
}

// Unexpected records that the next token is not what was expected.
func (st *State[T, E]) Unexpected(expected string) {
	tok := st.Current()
	if st.AtEOF() {
		st.AddDiagnostic(diag.UnexpectedEOF(st.src, tok.Span.Start, expected))
		return
	}
	st.AddDiagnostic(diag.UnexpectedToken(st.src, tok.Span.Start, tok.Kind.String(), expected))
}

// ErrorNode records msg, then wraps the next token and everything up to one
// of recover in an error node.
func (st *State[T, E]) ErrorNode(msg string, recover ...T) *syntax.GreenNode[T, E] {
	cp := st.Checkpoint()
	st.Error(msg)
	st.Bump()
	if len(recover) > 0 {
		st.AdvanceUntilAny(recover...)
	}
	return st.FinishAt(cp, st.kinds.Error)
}

// MustProgress returns a function to call at the end of a loop iteration.
// It reports false when the iteration consumed nothing, after moving the
// next token into an error node so the caller can stop or retry.
func (st *State[T, E]) MustProgress() func() bool {
	saved := st.pos
	return func() bool {
		if st.pos != saved {
			return true
		}
		if !st.AtEOF() {
			st.ErrorNode("unexpected " + st.Peek().String())
		}
		return false
	}
}

// Reused returns the number of subtrees taken over from the previous tree.
func (st *State[T, E]) Reused() int {
	return st.reused
}

// Run parses with rule and seals the root node. Tokens the rule left
// behind, including those skipped after the step budget ran out, are
// wrapped in an error node so the tree always covers the whole input.
func (st *State[T, E]) Run(root E, rule func(st *State[T, E])) diag.Result[*syntax.GreenNode[T, E]] {
	rule(st)
	st.flushTrivia()
	if st.pos < st.eof {
		if !st.exhausted {
			st.Error("unexpected input")
		}
		cp := Checkpoint{sink: len(st.sink), pos: st.pos, diags: len(st.diags)}
		for ; st.pos < st.eof; st.pos++ {
			tok := st.tokens[st.pos]
			st.sink = append(st.sink, syntax.LeafChild[T, E](tok.Kind, tok.Len()))
		}
		st.FinishAt(cp, st.kinds.Error)
	}
	node := syntax.NewNodeFlagged(root, st.sink, len(st.diags) > 0)
	st.sink = nil
	diag.Sort(st.diags)
	return diag.Ok(node, st.diags)
}
