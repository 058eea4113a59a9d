package parse

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// Lexical reports whether text is exactly a sentence of the lexical
// production name.
func (c *Grammar) Lexical(name, text string) bool {
	m := &matcher{
		grammar:  c.source,
		text:     text,
		memo:     make(map[memoKey][]int),
		visiting: make(map[memoKey]bool),
	}
	for _, end := range m.name(name, 0) {
		if end == len(text) {
			return true
		}
	}
	return false
}

type memoKey struct {
	name   string
	offset int
}

// matcher matches lexical productions against text. Every match returns
// all the offsets where the expression can end, so repetitions give back
// what a following expression needs.
type matcher struct {
	grammar  ebnf.Grammar
	text     string
	memo     map[memoKey][]int
	visiting map[memoKey]bool
}

func (m *matcher) match(expr ebnf.Expression, offset int) []int {
	switch e := expr.(type) {
	case nil:
		return []int{offset}

	case *ebnf.Token:
		if strings.HasPrefix(m.text[offset:], e.String) {
			return []int{offset + len(e.String)}
		}
		return nil

	case *ebnf.Range:
		r, size := utf8.DecodeRuneInString(m.text[offset:])
		if size == 0 {
			return nil
		}
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		if r >= lo && r <= hi {
			return []int{offset + size}
		}
		return nil

	case ebnf.Sequence:
		ends := []int{offset}
		for _, it := range e {
			var next []int
			for _, pos := range ends {
				next = union(next, m.match(it, pos))
			}
			if len(next) == 0 {
				return nil
			}
			ends = next
		}
		return ends

	case ebnf.Alternative:
		var ends []int
		for _, alt := range e {
			ends = union(ends, m.match(alt, offset))
		}
		return ends

	case *ebnf.Group:
		return m.match(e.Body, offset)

	case *ebnf.Option:
		return union([]int{offset}, m.match(e.Body, offset))

	case *ebnf.Repetition:
		ends := []int{offset}
		frontier := []int{offset}
		for len(frontier) > 0 {
			var next []int
			for _, pos := range frontier {
				for _, end := range m.match(e.Body, pos) {
					if !contains(ends, end) {
						ends = append(ends, end)
						next = append(next, end)
					}
				}
			}
			frontier = next
		}
		return ends

	case *ebnf.Name:
		return m.name(e.String, offset)
	}
	return nil
}

// name matches a production, memoized per offset. Left recursion matches
// nothing.
func (m *matcher) name(name string, offset int) []int {
	key := memoKey{name: name, offset: offset}
	if ends, ok := m.memo[key]; ok {
		return ends
	}
	if m.visiting[key] {
		return nil
	}
	prod, ok := m.grammar[name]
	if !ok {
		return nil
	}
	m.visiting[key] = true
	ends := m.match(prod.Expr, offset)
	delete(m.visiting, key)
	m.memo[key] = ends
	return ends
}

func union(a, b []int) []int {
	for _, v := range b {
		if !contains(a, v) {
			a = append(a, v)
		}
	}
	return a
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
