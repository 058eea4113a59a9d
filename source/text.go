// Package source holds program text and maps between byte offsets,
// 1-based line/column locations and 0-based UTF-16 editor positions.
package source

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Source is the read-only view of program text used by lexers, parsers and
// diagnostics.
type Source interface {
	Len() int
	String() string
	Origin() string
	TextIn(span Span) string
	Location(offset int) Location
	OffsetToPosition(offset int) Position
	PositionToOffset(pos Position) int
}

// Text is program text together with its line table. The line table always
// starts with 0 and holds one entry per line; "\n", "\r\n" and a lone "\r"
// each terminate a line.
type Text struct {
	origin     string
	raw        string
	lineStarts []int
}

var _ Source = (*Text)(nil)

// New returns a Text without an origin.
func New(text string) *Text {
	return NewWithOrigin("", text)
}

// NewWithOrigin returns a Text whose diagnostics carry origin, usually a
// file path or URI.
func NewWithOrigin(origin, text string) *Text {
	return &Text{
		origin:     origin,
		raw:        text,
		lineStarts: buildLineStarts(text),
	}
}

func buildLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (t *Text) Len() int {
	return len(t.raw)
}

func (t *Text) String() string {
	return t.raw
}

func (t *Text) Origin() string {
	return t.origin
}

// TextIn returns the text covered by span, clamped to the text bounds.
func (t *Text) TextIn(span Span) string {
	start := t.clamp(span.Start)
	end := t.clamp(span.End)
	if end < start {
		return ""
	}
	return t.raw[start:end]
}

// CharAt decodes the character starting at offset. It reports false at or
// past the end of the text.
func (t *Text) CharAt(offset int) (rune, bool) {
	if offset < 0 || offset >= len(t.raw) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(t.raw[offset:])
	return r, true
}

// LineCount returns the number of lines. Empty text has one line.
func (t *Text) LineCount() int {
	return len(t.lineStarts)
}

// LineSpan returns the span of line, excluding its terminator.
func (t *Text) LineSpan(line int) Span {
	if line < 0 {
		line = 0
	}
	if line >= len(t.lineStarts) {
		return Span{Start: len(t.raw), End: len(t.raw)}
	}
	return Span{Start: t.lineStarts[line], End: t.lineContentEnd(line)}
}

func (t *Text) lineContentEnd(line int) int {
	end := len(t.raw)
	if line+1 < len(t.lineStarts) {
		end = t.lineStarts[line+1]
	}
	start := t.lineStarts[line]
	if end > start && t.raw[end-1] == '\n' {
		end--
	}
	if end > start && t.raw[end-1] == '\r' {
		end--
	}
	return end
}

// lineOf returns the 0-based line containing offset.
func (t *Text) lineOf(offset int) int {
	return sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	}) - 1
}

func (t *Text) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(t.raw) {
		return len(t.raw)
	}
	return offset
}

// Location returns the 1-based line and character column of offset.
// Offsets inside a multi-byte character or a line terminator clamp to the
// preceding character boundary.
func (t *Text) Location(offset int) Location {
	offset = t.clamp(offset)
	line := t.lineOf(offset)
	start := t.lineStarts[line]
	if end := t.lineContentEnd(line); offset > end {
		offset = end
	}
	column := 1
	for i := start; i < offset; {
		_, size := utf8.DecodeRuneInString(t.raw[i:])
		if i+size > offset {
			break
		}
		i += size
		column++
	}
	return Location{Line: line + 1, Column: column}
}

// OffsetToPosition returns the editor position of offset. The character is
// counted in UTF-16 code units.
func (t *Text) OffsetToPosition(offset int) Position {
	offset = t.clamp(offset)
	line := t.lineOf(offset)
	start := t.lineStarts[line]
	if end := t.lineContentEnd(line); offset > end {
		offset = end
	}
	units := 0
	for i := start; i < offset; {
		r, size := utf8.DecodeRuneInString(t.raw[i:])
		if i+size > offset {
			break
		}
		i += size
		units += utf16Len(r)
	}
	return Position{Line: line, Character: units}
}

// PositionToOffset returns the byte offset of an editor position. Lines past
// the end clamp to the end of the text and characters past the end of a line
// clamp to the end of its content. A character inside a surrogate pair
// clamps to the start of that character.
func (t *Text) PositionToOffset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(t.lineStarts) {
		return len(t.raw)
	}
	i := t.lineStarts[pos.Line]
	end := t.lineContentEnd(pos.Line)
	units := 0
	for i < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(t.raw[i:])
		w := utf16Len(r)
		if units+w > pos.Character {
			break
		}
		units += w
		i += size
	}
	return i
}

func utf16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}

// ApplyEdits applies a batch of edits. All spans are in the coordinates of
// the text before the batch and must not overlap; they are applied in
// increasing start order, so inserts at the same offset keep their given
// order. The returned span covers everything the batch touched, in the
// coordinates of the new text. An invalid batch leaves the text unchanged.
func (t *Text) ApplyEdits(edits []TextEdit) (Span, error) {
	if len(edits) == 0 {
		return Span{}, nil
	}
	sorted, err := SortEdits(edits, len(t.raw))
	if err != nil {
		return Span{}, err
	}

	var b strings.Builder
	b.Grow(len(t.raw))
	last := 0
	shift := 0
	for _, e := range sorted {
		b.WriteString(t.raw[last:e.Span.Start])
		b.WriteString(e.Text)
		last = e.Span.End
		shift += len(e.Text) - e.Span.Len()
	}
	b.WriteString(t.raw[last:])

	first, final := sorted[0], sorted[len(sorted)-1]
	affected := Span{
		Start: first.Span.Start,
		End:   final.Span.End + shift,
	}

	t.raw = b.String()
	t.lineStarts = buildLineStarts(t.raw)
	return affected, nil
}

// SortEdits validates edits against a text of length n and returns them
// ordered by start offset.
func SortEdits(edits []TextEdit, n int) ([]TextEdit, error) {
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})
	for i, e := range sorted {
		if e.Span.Start < 0 || e.Span.End < e.Span.Start || e.Span.End > n {
			return nil, fmt.Errorf("edit %v out of bounds for text of length %d", e.Span, n)
		}
		if i > 0 && sorted[i-1].Span.End > e.Span.Start {
			return nil, fmt.Errorf("edit %v overlaps edit %v", e.Span, sorted[i-1].Span)
		}
	}
	return sorted, nil
}
