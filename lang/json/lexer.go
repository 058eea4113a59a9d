package json

import (
	"fmt"
	"unicode"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/lexer"
	"github.com/dhamidi/oak/source"
)

var lexKinds = lexer.Kinds[TokenKind]{EOF: TokenEOF, Error: TokenError}

var (
	commentConfig = lexer.CommentConfig{Line: []string{"//"}, BlockStart: "/*", BlockEnd: "*/"}
	numberConfig  = lexer.NumberConfig{LeadingMinus: true, Fraction: true, Exponent: true}
	wordConfig    = lexer.IdentifierConfig{
		Start: func(r rune) bool {
			return r == '_' || r == '$' || unicode.IsLetter(r)
		},
		Continue: func(r rune) bool {
			return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
		},
	}
	punctuation = map[rune]TokenKind{
		'{': TokenLBrace,
		'}': TokenRBrace,
		'[': TokenLBracket,
		']': TokenRBracket,
		',': TokenComma,
		':': TokenColon,
	}
)

func (l *Language) stringConfig() lexer.StringConfig {
	cfg := lexer.StringConfig{Quotes: []rune{'"'}, Escape: '\\'}
	if l.opts.SingleQuotes {
		cfg.Quotes = append(cfg.Quotes, '\'')
	}
	return cfg
}

func (l *Language) classifyWord(text string) TokenKind {
	switch text {
	case "true":
		return TokenTrue
	case "false":
		return TokenFalse
	case "null":
		return TokenNull
	}
	if l.opts.BareKeys {
		return TokenBareKey
	}
	return TokenError
}

// Lex scans src into tokens and hands them to cache.
func (l *Language) Lex(src source.Source, edits []source.TextEdit, cache lexer.Cache[TokenKind]) diag.Result[[]Token] {
	return l.lex(src, edits, cache).FinishWithCache(cache)
}

func (l *Language) lex(src source.Source, edits []source.TextEdit, cache lexer.Cache[TokenKind]) *lexer.State[TokenKind] {
	var opts []lexer.Option
	if l.opts.StepBudget > 0 {
		opts = append(opts, lexer.WithStepBudget(l.opts.StepBudget))
	}
	s := lexer.NewState(src, lexKinds, opts...)
	s.Resume(edits, cache)
	quoted := l.stringConfig()
	for s.NotAtEnd() {
		start := s.Position()
		switch {
		case s.ScanWhitespace(TokenWhitespace, lexer.WhitespaceConfig{Unicode: true}):
		case l.opts.Comments && s.ScanComment(TokenComment, commentConfig):
		case s.ScanString(TokenString, quoted):
		case s.ScanNumber(TokenNumber, numberConfig):
		case s.ScanIdentifier(wordConfig, l.classifyWord):
			if tok := s.Tokens()[len(s.Tokens())-1]; tok.Kind == TokenError {
				s.AddError(diag.Syntax(src, tok.Span.Start, fmt.Sprintf("unknown word %q", src.TextIn(tok.Span))))
			}
		default:
			if kind, ok := punctuation[s.Peek()]; ok {
				s.Bump()
				s.AddTokenFrom(kind, start)
			}
		}
		s.AdvanceIfDeadlock(start)
	}
	return s
}
