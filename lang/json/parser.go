package json

import (
	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/lexer"
	"github.com/dhamidi/oak/parser"
	"github.com/dhamidi/oak/source"
)

type pstate = parser.State[TokenKind, NodeKind]

var parseKinds = parser.Kinds[TokenKind, NodeKind]{EOF: TokenEOF, Error: KindError}

// Parse lexes and parses a JSON document. A document without a value
// parses to an empty tree and reports an unexpected end of input as its
// error.
func (l *Language) Parse(src source.Source, edits []source.TextEdit, cache parser.Cache[TokenKind, NodeKind]) diag.Result[*GreenNode] {
	var lc lexer.Cache[TokenKind]
	if cache != nil {
		lc = cache
	}
	lexed := l.lex(src, edits, lc).Finish()

	var opts []parser.Option
	if l.opts.StepBudget > 0 {
		opts = append(opts, parser.WithStepBudget(l.opts.StepBudget))
	}
	st := parser.NewState(src, lexed.Value, parseKinds, opts...)
	if cache != nil {
		st.Incremental(cache, edits)
		cache.SetLexOutput(lexed.Value, lexed.Diagnostics)
	}

	var missing *diag.Error
	res := st.Run(KindDocument, func(st *pstate) {
		if st.AtEOF() {
			missing = diag.UnexpectedEOF(src, st.Offset(), "value")
			st.AddDiagnostic(missing)
			return
		}
		l.value(st)
	})
	res.Diagnostics = diag.Merge(lexed.Diagnostics, res.Diagnostics)
	if missing != nil {
		res.Err = missing
	}
	return res
}

func (l *Language) atKey(st *pstate) bool {
	return st.At(TokenString) || l.opts.BareKeys && st.At(TokenBareKey)
}

func startsValue(kind TokenKind) bool {
	switch kind {
	case TokenLBrace, TokenLBracket, TokenString, TokenNumber, TokenTrue, TokenFalse, TokenNull:
		return true
	}
	return false
}

func (l *Language) value(st *pstate) {
	switch st.Peek() {
	case TokenLBrace:
		st.IncrementalNode(KindObject, func() { l.object(st) })
	case TokenLBracket:
		st.IncrementalNode(KindArray, func() { l.array(st) })
	case TokenString:
		st.IncrementalNode(KindString, st.Bump)
	case TokenNumber:
		st.IncrementalNode(KindNumber, st.Bump)
	case TokenTrue, TokenFalse:
		st.IncrementalNode(KindBoolean, st.Bump)
	case TokenNull:
		st.IncrementalNode(KindNull, st.Bump)
	case TokenEOF, TokenComma, TokenColon, TokenRBrace, TokenRBracket:
		cp := st.Checkpoint()
		st.Unexpected("value")
		st.FinishAt(cp, KindError)
	default:
		st.ErrorNode("expected value, found " + st.Peek().String())
	}
}

// trailingComma eats a comma and reports whether the container closes
// right after it.
func (l *Language) trailingComma(st *pstate, close TokenKind) bool {
	offset := st.Offset()
	st.Bump()
	if !st.At(close) {
		return false
	}
	if !l.opts.TrailingCommas {
		st.AddDiagnostic(diag.Syntax(st.Source(), offset, "trailing comma is not allowed"))
	}
	return true
}

func (l *Language) object(st *pstate) {
	st.Bump()
	for !st.At(TokenRBrace) && st.NotAtEnd() {
		if !l.atKey(st) {
			if st.At(TokenRBracket) {
				break
			}
			st.ErrorNode("expected property name, found "+st.Peek().String(),
				TokenComma, TokenRBrace, TokenRBracket, TokenString, TokenBareKey)
			continue
		}
		l.entry(st)
		if st.At(TokenComma) {
			if l.trailingComma(st, TokenRBrace) {
				break
			}
			continue
		}
		if st.At(TokenRBrace) || !l.atKey(st) {
			break
		}
		st.Unexpected(TokenComma.String())
	}
	st.Expect(TokenRBrace)
}

func (l *Language) entry(st *pstate) {
	st.IncrementalNode(KindEntry, func() {
		key := st.Checkpoint()
		st.Bump()
		st.FinishAt(key, KindKey)
		st.Expect(TokenColon)
		l.value(st)
	})
}

func (l *Language) array(st *pstate) {
	st.Bump()
	for !st.At(TokenRBracket) && st.NotAtEnd() {
		if st.At(TokenRBrace) {
			break
		}
		l.value(st)
		if st.At(TokenComma) {
			if l.trailingComma(st, TokenRBracket) {
				break
			}
			continue
		}
		if st.At(TokenRBracket) || !startsValue(st.Peek()) {
			break
		}
		st.Unexpected(TokenComma.String())
	}
	st.Expect(TokenRBracket)
}
