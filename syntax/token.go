package syntax

import (
	"fmt"

	"github.com/dhamidi/oak/source"
)

// Token is a lexed token. Token streams are contiguous: every byte of the
// source belongs to exactly one token, and the stream ends with a
// zero-length EOF token.
type Token[T TokenKind] struct {
	Kind T
	Span source.Span
}

func (t Token[T]) Len() int {
	return t.Span.Len()
}

func (t Token[T]) String() string {
	return fmt.Sprintf("%s@%s", t.Kind, t.Span)
}

// TokenIndexAt returns the index of the token containing offset, or the
// index of the last token when offset is at or past the end.
func TokenIndexAt[T TokenKind](tokens []Token[T], offset int) int {
	lo, hi := 0, len(tokens)
	for lo < hi {
		mid := (lo + hi) / 2
		if tokens[mid].Span.End <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(tokens) {
		return len(tokens) - 1
	}
	return lo
}
