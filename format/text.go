package format

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the styles of the text encoder.
type Styles struct {
	Node     lipgloss.Style
	Token    lipgloss.Style
	Text     lipgloss.Style
	Error    lipgloss.Style
	Location lipgloss.Style
	color    bool
}

func NewStyles(colorEnabled bool) *Styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &Styles{Node: plain, Token: plain, Text: plain, Error: plain, Location: plain}
	}
	return &Styles{
		Node:     lipgloss.NewStyle().Bold(true),
		Token:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Text:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Location: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		color:    true,
	}
}

func (s *Styles) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Render(text)
}

// IsColorEnabled reports whether output to w should be coloured. mode is
// "always", "never" or "auto"; in auto mode colour requires a terminal and
// an unset NO_COLOR.
func IsColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// TextEncoder writes an indented tree dump, one element per line.
type TextEncoder struct {
	w         io.Writer
	styles    *Styles
	positions bool
}

func NewTextEncoder(w io.Writer, styles *Styles) *TextEncoder {
	if styles == nil {
		styles = NewStyles(false)
	}
	return &TextEncoder{w: w, styles: styles}
}

// WithPositions adds line:column ranges to every line.
func (e *TextEncoder) WithPositions() *TextEncoder {
	e.positions = true
	return e
}

func (e *TextEncoder) Encode(node *Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText(node *Node) ([]byte, error) {
	var b strings.Builder
	e.write(&b, node, 0)
	return []byte(b.String()), nil
}

// EncodeTokens writes one token per line.
func (e *TextEncoder) EncodeTokens(tokens []*Node) error {
	var b strings.Builder
	for _, tok := range tokens {
		e.write(&b, tok, 0)
	}
	_, err := io.WriteString(e.w, b.String())
	return err
}

func (e *TextEncoder) write(b *strings.Builder, n *Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch {
	case n.Error:
		b.WriteString(e.styles.render(e.styles.Error, n.Kind))
	case n.Token:
		b.WriteString(e.styles.render(e.styles.Token, n.Kind))
	default:
		b.WriteString(e.styles.render(e.styles.Node, n.Kind))
	}
	if n.Token {
		b.WriteString(" ")
		b.WriteString(e.styles.render(e.styles.Text, strconv.Quote(n.Text)))
	}
	if e.positions {
		b.WriteString(" ")
		b.WriteString(e.styles.render(e.styles.Location, "["+n.Start.String()+"-"+n.End.String()+"]"))
	} else {
		b.WriteString(" ")
		b.WriteString(e.styles.render(e.styles.Location, n.Span.String()))
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		e.write(b, c, depth+1)
	}
}
