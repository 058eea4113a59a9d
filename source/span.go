package source

import "fmt"

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether offset lies in [Start, End).
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Touches reports whether other overlaps s or shares a boundary with it.
func (s Span) Touches(other Span) bool {
	return other.Start <= s.End && other.End >= s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// TextEdit replaces the text covered by Span with Text.
type TextEdit struct {
	Span Span
	Text string
}

func Insert(offset int, text string) TextEdit {
	return TextEdit{Span: Span{Start: offset, End: offset}, Text: text}
}

func Delete(span Span) TextEdit {
	return TextEdit{Span: span}
}

func Replace(span Span, text string) TextEdit {
	return TextEdit{Span: span, Text: text}
}

// Position is a 0-based editor position. Character counts UTF-16 code units.
type Position struct {
	Line      int
	Character int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Location is a 1-based line and character column used in diagnostics.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}
