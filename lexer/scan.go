package lexer

import (
	"unicode"

	"github.com/dhamidi/oak/diag"
)

// WhitespaceConfig controls ScanWhitespace.
type WhitespaceConfig struct {
	// Unicode accepts every unicode.IsSpace character, not only ASCII
	// spaces, tabs and line breaks.
	Unicode bool
}

// ScanWhitespace consumes a run of whitespace as one token.
func (s *State[T]) ScanWhitespace(kind T, cfg WhitespaceConfig) bool {
	start := s.pos
	s.TakeWhile(func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return true
		}
		return cfg.Unicode && unicode.IsSpace(r)
	})
	if s.pos == start {
		return false
	}
	s.AddTokenFrom(kind, start)
	return true
}

// CommentConfig describes a language's comment syntax.
type CommentConfig struct {
	Line       []string
	BlockStart string
	BlockEnd   string
	Nested     bool
}

// ScanComment consumes a line or block comment. An unterminated block
// comment runs to the end of input and records a diagnostic.
func (s *State[T]) ScanComment(kind T, cfg CommentConfig) bool {
	start := s.pos
	for _, marker := range cfg.Line {
		if s.ConsumeIfStartsWith(marker) {
			s.TakeWhile(func(r rune) bool { return r != '\n' && r != '\r' })
			s.AddTokenFrom(kind, start)
			return true
		}
	}
	if cfg.BlockStart == "" || !s.ConsumeIfStartsWith(cfg.BlockStart) {
		return false
	}
	depth := 1
	for s.pos < len(s.text) {
		if s.ConsumeIfStartsWith(cfg.BlockEnd) {
			depth--
			if depth == 0 {
				s.AddTokenFrom(kind, start)
				return true
			}
			continue
		}
		if cfg.Nested && s.ConsumeIfStartsWith(cfg.BlockStart) {
			depth++
			continue
		}
		s.Bump()
	}
	s.AddTokenFrom(kind, start)
	s.AddError(diag.Syntax(s.src, start, "unterminated block comment"))
	return true
}

// StringConfig describes a language's quoted literals.
type StringConfig struct {
	Quotes    []rune
	Escape    rune
	Multiline bool
}

// ScanString consumes a quoted literal opened by one of cfg.Quotes. An
// unterminated literal ends at the line break, or at the end of input for
// multiline strings, and records a diagnostic.
func (s *State[T]) ScanString(kind T, cfg StringConfig) bool {
	quote := s.Peek()
	found := false
	for _, q := range cfg.Quotes {
		if q == quote {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	start := s.pos
	s.Bump()
	for {
		r := s.Peek()
		switch {
		case r == EOF, !cfg.Multiline && (r == '\n' || r == '\r'):
			s.AddTokenFrom(kind, start)
			s.AddError(diag.Syntax(s.src, start, "unterminated string literal"))
			return true
		case r == quote:
			s.Bump()
			s.AddTokenFrom(kind, start)
			return true
		case cfg.Escape != 0 && r == cfg.Escape:
			s.Bump()
			if next := s.Peek(); next != EOF && (cfg.Multiline || next != '\n' && next != '\r') {
				s.Bump()
			}
		default:
			s.Bump()
		}
	}
}

// IdentifierConfig describes identifier characters. Nil predicates default
// to letters and underscore, plus digits after the first character.
type IdentifierConfig struct {
	Start    func(rune) bool
	Continue func(rune) bool
}

func defaultIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func defaultIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ScanIdentifier consumes an identifier and adds a token whose kind is
// chosen by classify, which sees the identifier's text.
func (s *State[T]) ScanIdentifier(cfg IdentifierConfig, classify func(text string) T) bool {
	isStart, isContinue := cfg.Start, cfg.Continue
	if isStart == nil {
		isStart = defaultIdentStart
	}
	if isContinue == nil {
		isContinue = defaultIdentContinue
	}
	r := s.Peek()
	if r == EOF || !isStart(r) {
		return false
	}
	start := s.pos
	s.Bump()
	s.TakeWhile(isContinue)
	s.AddTokenFrom(classify(s.text[start:s.pos]), start)
	return true
}

// NumberConfig describes a language's numeric literals.
type NumberConfig struct {
	LeadingMinus bool
	Hex          bool
	Binary       bool
	Octal        bool
	Fraction     bool
	Exponent     bool
	Separator    rune
}

// ScanNumber consumes a numeric literal. A radix prefix or exponent marker
// without digits records a diagnostic but still produces a number token.
func (s *State[T]) ScanNumber(kind T, cfg NumberConfig) bool {
	start := s.pos
	if cfg.LeadingMinus && s.Peek() == '-' && isDigit(s.PeekNext()) {
		s.Bump()
	}
	if !isDigit(s.Peek()) {
		s.pos = start
		return false
	}

	if s.Peek() == '0' {
		var digit func(rune) bool
		switch next := s.PeekNext(); {
		case cfg.Hex && (next == 'x' || next == 'X'):
			digit = isHexDigit
		case cfg.Binary && (next == 'b' || next == 'B'):
			digit = func(r rune) bool { return r == '0' || r == '1' }
		case cfg.Octal && (next == 'o' || next == 'O'):
			digit = func(r rune) bool { return r >= '0' && r <= '7' }
		}
		if digit != nil {
			s.Advance(2)
			if s.digits(digit, cfg.Separator) == 0 {
				s.AddError(diag.Syntax(s.src, start, "missing digits after radix prefix"))
			}
			s.AddTokenFrom(kind, start)
			return true
		}
	}

	s.digits(isDigit, cfg.Separator)
	if cfg.Fraction && s.Peek() == '.' && isDigit(s.PeekNext()) {
		s.Bump()
		s.digits(isDigit, cfg.Separator)
	}
	if cfg.Exponent && (s.Peek() == 'e' || s.Peek() == 'E') {
		mark := s.pos
		s.Bump()
		if s.Peek() == '+' || s.Peek() == '-' {
			s.Bump()
		}
		if s.digits(isDigit, cfg.Separator) == 0 {
			s.AddError(diag.Syntax(s.src, mark, "missing exponent digits"))
		}
	}
	s.AddTokenFrom(kind, start)
	return true
}

func (s *State[T]) digits(digit func(rune) bool, sep rune) int {
	count := 0
	s.TakeWhile(func(r rune) bool {
		if digit(r) {
			count++
			return true
		}
		return sep != 0 && r == sep && count > 0
	})
	return count
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}
