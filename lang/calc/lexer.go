package calc

import (
	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/lexer"
	"github.com/dhamidi/oak/source"
)

var lexKinds = lexer.Kinds[TokenKind]{EOF: TokenEOF, Error: TokenError}

// operators is ordered so that longer operators are tried first.
var operators = []struct {
	text string
	kind TokenKind
}{
	{"==", TokenEqEq},
	{"!=", TokenNotEq},
	{"<=", TokenLtEq},
	{">=", TokenGtEq},
	{"&&", TokenAndAnd},
	{"||", TokenOrOr},
	{"=", TokenAssign},
	{"+", TokenPlus},
	{"-", TokenMinus},
	{"*", TokenStar},
	{"/", TokenSlash},
	{"%", TokenPercent},
	{"!", TokenBang},
	{"<", TokenLt},
	{">", TokenGt},
	{"(", TokenLParen},
	{")", TokenRParen},
	{"{", TokenLBrace},
	{"}", TokenRBrace},
	{"[", TokenLBracket},
	{"]", TokenRBracket},
	{",", TokenComma},
	{";", TokenSemicolon},
	{".", TokenDot},
}

var (
	lineComment  = lexer.CommentConfig{Line: []string{"//"}}
	blockComment = lexer.CommentConfig{BlockStart: "/*", BlockEnd: "*/"}
	stringConfig = lexer.StringConfig{Quotes: []rune{'"'}, Escape: '\\'}
	numberConfig = lexer.NumberConfig{Hex: true, Binary: true, Fraction: true, Exponent: true, Separator: '_'}
)

func classifyWord(text string) TokenKind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return TokenIdent
}

// Lex scans src into tokens and hands them to cache.
func (l *Language) Lex(src source.Source, edits []source.TextEdit, cache lexer.Cache[TokenKind]) diag.Result[[]Token] {
	s := l.lex(src, edits, cache)
	return s.FinishWithCache(cache)
}

// lex scans src, resuming from the cached tokens where edits allow, and
// leaves the state unfinished so the caller decides when the cache sees the
// result.
func (l *Language) lex(src source.Source, edits []source.TextEdit, cache lexer.Cache[TokenKind]) *lexer.State[TokenKind] {
	var opts []lexer.Option
	if l.stepBudget > 0 {
		opts = append(opts, lexer.WithStepBudget(l.stepBudget))
	}
	s := lexer.NewState(src, lexKinds, opts...)
	s.Resume(edits, cache)
	for s.NotAtEnd() {
		start := s.Position()
		switch {
		case s.ScanWhitespace(TokenWhitespace, lexer.WhitespaceConfig{Unicode: true}):
		case s.ScanComment(TokenLineComment, lineComment):
		case s.ScanComment(TokenBlockComment, blockComment):
		case s.ScanString(TokenString, stringConfig):
		case s.ScanNumber(TokenNumber, numberConfig):
		case s.ScanIdentifier(lexer.IdentifierConfig{}, classifyWord):
		default:
			scanOperator(s)
		}
		s.AdvanceIfDeadlock(start)
	}
	return s
}

func scanOperator(s *lexer.State[TokenKind]) bool {
	start := s.Position()
	for _, op := range operators {
		if s.ConsumeIfStartsWith(op.text) {
			s.AddTokenFrom(op.kind, start)
			return true
		}
	}
	return false
}
