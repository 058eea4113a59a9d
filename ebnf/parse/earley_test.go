package parse

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/oak/source"
)

const listGrammar = `
List   = "[" [ Item { "," Item } ] "]" .
Item   = word | List .
word   = letter { letter } .
letter = "a" … "z" .
`

func compile(t *testing.T, src, start string, terminals map[string]string) *Grammar {
	t.Helper()
	g, err := ebnf.Parse("test.ebnf", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	c, err := Compile(g, start, terminals)
	if err != nil {
		t.Fatalf("compile grammar: %v", err)
	}
	return c
}

// toks builds tokens separated by one space. "Word:ab" is a token of kind
// Word; anything else is a punctuation token whose kind is its quoted text.
func toks(specs ...string) []Token {
	var out []Token
	offset := 0
	for _, spec := range specs {
		tok := Token{Kind: "'" + spec + "'", Text: spec}
		if kind, text, ok := strings.Cut(spec, ":"); ok && kind != "" {
			tok = Token{Kind: kind, Text: text}
		}
		tok.Span = source.Span{Start: offset, End: offset + len(tok.Text)}
		out = append(out, tok)
		offset = tok.Span.End + 1
	}
	return out
}

func TestRecognize(t *testing.T) {
	c := compile(t, listGrammar, "List", map[string]string{"word": "Word"})

	tests := []struct {
		name   string
		tokens []Token
	}{
		{"empty list", toks("[", "]")},
		{"one word", toks("[", "Word:ab", "]")},
		{"nested", toks("[", "Word:ab", ",", "[", "]", ",", "[", "Word:c", "]", "]")},
		{"with eof", append(toks("[", "]"), Token{Kind: "EOF", Span: source.Span{Start: 4, End: 4}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Recognize(tt.tokens); err != nil {
				t.Errorf("Recognize() = %v", err)
			}
		})
	}
}

func TestRecognizeErrors(t *testing.T) {
	c := compile(t, listGrammar, "List", map[string]string{"word": "Word"})

	tests := []struct {
		name       string
		tokens     []Token
		wantOffset int
		wantMsg    string
	}{
		{
			name:       "missing item",
			tokens:     toks("[", "Word:ab", ",", "]"),
			wantOffset: 7,
			wantMsg:    `unexpected "]", expected "[" or word`,
		},
		{
			name:       "unterminated",
			tokens:     toks("[", "Word:ab"),
			wantOffset: 4,
			wantMsg:    `unexpected end of input, expected "," or "]"`,
		},
		{
			name:       "word text outside the lexical production",
			tokens:     toks("[", "Word:a1", "]"),
			wantOffset: 2,
			wantMsg:    `unexpected "a1", expected "[" or "]" or word`,
		},
		{
			name:       "trailing tokens",
			tokens:     toks("[", "]", "]"),
			wantOffset: 4,
			wantMsg:    `unexpected "]"`,
		},
		{
			name:       "empty input",
			tokens:     nil,
			wantOffset: 0,
			wantMsg:    `unexpected end of input, expected "["`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Recognize(tt.tokens)
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("Recognize() = %v, want *SyntaxError", err)
			}
			if serr.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", serr.Offset, tt.wantOffset)
			}
			if serr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", serr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRecognizeAmbiguousLeftRecursion(t *testing.T) {
	c := compile(t, `
Expr   = Expr "+" Expr | word .
word   = letter { letter } .
letter = "a" … "z" .
`, "Expr", map[string]string{"word": "Word"})

	if err := c.Recognize(toks("Word:a", "+", "Word:b", "+", "Word:c")); err != nil {
		t.Errorf("Recognize() = %v", err)
	}
	if err := c.Recognize(toks("Word:a", "+")); err == nil {
		t.Error("expected an error for a dangling operator")
	}
}

func TestKeywordLiteralsDoNotMatchClassTokens(t *testing.T) {
	c := compile(t, `
Stmt   = "let" word .
word   = letter { letter } .
letter = "a" … "z" .
`, "Stmt", map[string]string{"word": "Word"})

	if err := c.Recognize(toks("let", "Word:x")); err != nil {
		t.Errorf("Recognize() = %v", err)
	}
	if err := c.Recognize(toks("Word:let", "Word:x")); err == nil {
		t.Error("a Word token spelled like a keyword must not match the keyword")
	}
}

func TestLexical(t *testing.T) {
	c := compile(t, `
Doc    = str .
str    = "\"" { char } "\"" .
char   = " " … "~" .
`, "Doc", map[string]string{"str": "String"})

	tests := []struct {
		text string
		want bool
	}{
		{`"abc"`, true},
		{`""`, true},
		{`"a"b"`, true},
		{`"abc`, false},
		{`abc"`, false},
		{``, false},
	}
	for _, tt := range tests {
		if got := c.Lexical("str", tt.text); got != tt.want {
			t.Errorf("Lexical(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		start     string
		terminals map[string]string
		want      string
	}{
		{"unmapped lexical production", listGrammar, "List", nil, `no token kind for lexical production "word"`},
		{"lexical start", listGrammar, "word", map[string]string{"word": "Word"}, "is lexical"},
		{"undefined production", `A = B .`, "A", nil, "verify grammar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ebnf.Parse("test.ebnf", strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("parse grammar: %v", err)
			}
			_, err = Compile(g, tt.start, tt.terminals)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Compile() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
