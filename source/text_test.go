package source

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"abc", 1},
		{"a\nb", 2},
		{"a\r\nb\r\n", 3},
		{"a\rb\rc", 3},
		{"\n\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := New(tt.input).LineCount(); got != tt.want {
				t.Errorf("LineCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOffsetToPosition(t *testing.T) {
	text := New("ab\r\nc😀d\né")

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{2, Position{0, 2}},
		{3, Position{0, 2}}, // between \r and \n
		{4, Position{1, 0}},
		{5, Position{1, 1}},
		{7, Position{1, 1}}, // inside the emoji
		{9, Position{1, 3}},
		{10, Position{1, 4}},
		{11, Position{2, 0}},
		{13, Position{2, 1}},
		{100, Position{2, 1}},
		{-4, Position{0, 0}},
	}

	for _, tt := range tests {
		got := text.OffsetToPosition(tt.offset)
		if got != tt.want {
			t.Errorf("OffsetToPosition(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestPositionToOffset(t *testing.T) {
	text := New("ab\r\nc😀d\né")

	tests := []struct {
		pos  Position
		want int
	}{
		{Position{0, 0}, 0},
		{Position{0, 2}, 2},
		{Position{0, 9}, 2},
		{Position{1, 1}, 5},
		{Position{1, 2}, 5}, // second half of the surrogate pair
		{Position{1, 3}, 9},
		{Position{1, 4}, 10},
		{Position{2, 1}, 13},
		{Position{7, 0}, 13},
	}

	for _, tt := range tests {
		got := text.PositionToOffset(tt.pos)
		if got != tt.want {
			t.Errorf("PositionToOffset(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"let x = 1;\nlet y = x + 2;\n",
		"mixed\r\nline\rendings\n",
		"ünïcödé 😀 text\n\tand tabs",
	}

	for _, input := range inputs {
		text := New(input)
		for offset := 0; offset <= len(input); offset++ {
			if offset < len(input) && !utf8.RuneStart(input[offset]) {
				continue
			}
			if offset > 0 && input[offset-1] == '\r' && offset < len(input) && input[offset] == '\n' {
				continue
			}
			pos := text.OffsetToPosition(offset)
			back := text.PositionToOffset(pos)
			assert.Equal(t, offset, back, "input %q offset %d via %v", input, offset, pos)
		}
	}
}

func TestLocation(t *testing.T) {
	text := New("one\ntwo😀x\n")

	assert.Equal(t, Location{Line: 1, Column: 1}, text.Location(0))
	assert.Equal(t, Location{Line: 2, Column: 1}, text.Location(4))
	assert.Equal(t, Location{Line: 2, Column: 5}, text.Location(11))
	assert.Equal(t, Location{Line: 3, Column: 1}, text.Location(13))
}

func TestTextIn(t *testing.T) {
	text := New("hello world")

	assert.Equal(t, "world", text.TextIn(Span{6, 11}))
	assert.Equal(t, "world", text.TextIn(Span{6, 40}))
	assert.Equal(t, "", text.TextIn(Span{8, 3}))
}

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		edits    []TextEdit
		want     string
		affected Span
	}{
		{
			name:     "insert",
			input:    "ac",
			edits:    []TextEdit{Insert(1, "b")},
			want:     "abc",
			affected: Span{1, 2},
		},
		{
			name:     "delete",
			input:    "abc",
			edits:    []TextEdit{Delete(Span{0, 2})},
			want:     "c",
			affected: Span{0, 0},
		},
		{
			name:  "batch uses original coordinates",
			input: "let a = 1;",
			edits: []TextEdit{
				Replace(Span{8, 9}, "42"),
				Replace(Span{4, 5}, "answer"),
			},
			want:     "let answer = 42;",
			affected: Span{4, 15},
		},
		{
			name:     "inserts at the same offset keep order",
			input:    "x",
			edits:    []TextEdit{Insert(0, "a"), Insert(0, "b")},
			want:     "abx",
			affected: Span{0, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := New(tt.input)
			affected, err := text.ApplyEdits(tt.edits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, text.String())
			assert.Equal(t, tt.affected, affected)
			assert.Equal(t, New(tt.want).LineCount(), text.LineCount())
		})
	}
}

func TestApplyEditsRejectsInvalidBatch(t *testing.T) {
	text := New("abcdef")

	_, err := text.ApplyEdits([]TextEdit{Delete(Span{1, 4}), Insert(2, "x")})
	require.Error(t, err)

	_, err = text.ApplyEdits([]TextEdit{Delete(Span{4, 10})})
	require.Error(t, err)

	assert.Equal(t, "abcdef", text.String())
}

func TestApplyEditsRebuildsLines(t *testing.T) {
	text := New("a\nb")
	_, err := text.ApplyEdits([]TextEdit{Insert(3, "\r\nc")})
	require.NoError(t, err)

	assert.Equal(t, 3, text.LineCount())
	assert.Equal(t, Span{5, 6}, text.LineSpan(2))
	assert.Equal(t, Position{Line: 2, Character: 1}, text.OffsetToPosition(6))
}
