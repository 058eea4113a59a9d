package lexer

import "github.com/dhamidi/oak/source"

// Resume takes over the prefix of the cached token stream that edits cannot
// have changed and positions the state after it. A token is kept when it
// ends at least the lookahead margin before the first edited offset; one
// more token is then dropped so that a token which could extend across the
// old boundary is scanned again. Cached diagnostics before the resume point
// are kept as well.
//
// Resume must be called before anything has been scanned. A state with a
// step budget always scans from the start, since reused tokens would not
// be charged against the budget.
func (s *State[T]) Resume(edits []source.TextEdit, cache Cache[T]) {
	if cache == nil || len(edits) == 0 || s.pos != 0 || len(s.tokens) != 0 || s.budget >= 0 {
		return
	}
	old := cache.CachedTokens()
	if len(old) == 0 {
		return
	}

	relexFrom := edits[0].Span.Start
	for _, e := range edits[1:] {
		if e.Span.Start < relexFrom {
			relexFrom = e.Span.Start
		}
	}

	keep := 0
	for keep < len(old) && old[keep].Kind != s.kinds.EOF && old[keep].Span.End+s.lookahead <= relexFrom {
		keep++
	}
	if keep > 0 {
		keep--
	}
	if keep == 0 {
		return
	}

	s.tokens = append(s.tokens, old[:keep]...)
	s.pos = old[keep-1].Span.End
	s.reused = keep
	for _, d := range cache.CachedLexDiagnostics() {
		if d.Offset < s.pos {
			s.diags = append(s.diags, d)
		}
	}
}
