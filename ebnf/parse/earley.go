// Package parse recognizes token streams with an Earley chart parser driven
// by an EBNF reference grammar.
//
// Productions whose names start with a lower-case letter are lexical: they
// describe the text of one token and are matched against token text, never
// expanded into the chart.
package parse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/oak/source"
)

// Token is one terminal of the input. Trivia must already be removed. A
// trailing token of kind "EOF" marks where the input ends.
type Token struct {
	Kind string
	Text string
	Span source.Span
}

// SyntaxError is the first token the grammar cannot derive.
type SyntaxError struct {
	Offset   int
	AtEnd    bool
	Found    string
	Expected []string
}

func (e *SyntaxError) Error() string {
	found := "end of input"
	if !e.AtEnd {
		found = strconv.Quote(e.Found)
	}
	if len(e.Expected) == 0 {
		return "unexpected " + found
	}
	return fmt.Sprintf("unexpected %s, expected %s", found, strings.Join(e.Expected, " or "))
}

// symbol is one element of a rule body: a nonterminal, a literal token or
// a lexical class.
type symbol struct {
	name    string
	literal string
	class   string
}

func (s symbol) terminal() bool {
	return s.name == ""
}

func (s symbol) String() string {
	switch {
	case s.class != "":
		return s.class
	case s.name != "":
		return s.name
	}
	return strconv.Quote(s.literal)
}

type rule struct {
	lhs string
	rhs []symbol
}

// item is an Earley item: a rule, the position of the dot in its body, and
// the chart position the rule started at.
type item struct {
	rule   int
	dot    int
	origin int
}

// Grammar is an EBNF grammar lowered to plain rules. Groups, options,
// repetitions and nested alternatives become synthetic nonterminals.
type Grammar struct {
	source    ebnf.Grammar
	start     string
	terminals map[string]string
	kinds     map[string]bool
	rules     []rule
	byName    map[string][]int
	nullable  map[string]bool
	fresh     int
}

// Compile verifies g from start and lowers it for recognition. terminals
// maps every lexical production used by a non-lexical one to the token kind
// that carries it.
func Compile(g ebnf.Grammar, start string, terminals map[string]string) (*Grammar, error) {
	if isLexical(start) {
		return nil, fmt.Errorf("start production %q is lexical", start)
	}
	if err := ebnf.Verify(g, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	c := &Grammar{
		source:    g,
		start:     start,
		terminals: terminals,
		kinds:     make(map[string]bool, len(terminals)),
		byName:    make(map[string][]int),
	}
	for _, kind := range terminals {
		c.kinds[kind] = true
	}

	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if isLexical(name) {
			continue
		}
		if err := c.define(name, g[name].Expr); err != nil {
			return nil, err
		}
	}
	c.computeNullable()
	return c, nil
}

func isLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLower(r)
}

func (c *Grammar) add(lhs string, rhs []symbol) {
	c.byName[lhs] = append(c.byName[lhs], len(c.rules))
	c.rules = append(c.rules, rule{lhs: lhs, rhs: rhs})
}

func (c *Grammar) freshName() string {
	c.fresh++
	return "#" + strconv.Itoa(c.fresh)
}

func (c *Grammar) define(name string, expr ebnf.Expression) error {
	alts, ok := expr.(ebnf.Alternative)
	if !ok {
		alts = ebnf.Alternative{expr}
	}
	for _, alt := range alts {
		rhs, err := c.sequence(alt)
		if err != nil {
			return err
		}
		c.add(name, rhs)
	}
	return nil
}

func (c *Grammar) sequence(expr ebnf.Expression) ([]symbol, error) {
	var items ebnf.Sequence
	switch e := expr.(type) {
	case nil:
		return nil, nil
	case ebnf.Sequence:
		items = e
	default:
		items = ebnf.Sequence{e}
	}
	rhs := make([]symbol, 0, len(items))
	for _, it := range items {
		sym, err := c.symbol(it)
		if err != nil {
			return nil, err
		}
		rhs = append(rhs, sym)
	}
	return rhs, nil
}

func (c *Grammar) symbol(expr ebnf.Expression) (symbol, error) {
	switch e := expr.(type) {
	case *ebnf.Token:
		return symbol{literal: e.String}, nil

	case *ebnf.Name:
		if !isLexical(e.String) {
			return symbol{name: e.String}, nil
		}
		if _, ok := c.terminals[e.String]; !ok {
			return symbol{}, fmt.Errorf("%s: no token kind for lexical production %q", e.Pos(), e.String)
		}
		return symbol{class: e.String}, nil

	case *ebnf.Group:
		name := c.freshName()
		return symbol{name: name}, c.define(name, e.Body)

	case *ebnf.Option:
		name := c.freshName()
		c.add(name, nil)
		return symbol{name: name}, c.define(name, e.Body)

	case *ebnf.Repetition:
		// R = ε | R body
		name := c.freshName()
		c.add(name, nil)
		alts, ok := e.Body.(ebnf.Alternative)
		if !ok {
			alts = ebnf.Alternative{e.Body}
		}
		for _, alt := range alts {
			rhs, err := c.sequence(alt)
			if err != nil {
				return symbol{}, err
			}
			c.add(name, append([]symbol{{name: name}}, rhs...))
		}
		return symbol{name: name}, nil

	case ebnf.Alternative, ebnf.Sequence:
		name := c.freshName()
		return symbol{name: name}, c.define(name, e)
	}
	return symbol{}, fmt.Errorf("%s: unsupported expression %T outside a lexical production", expr.Pos(), expr)
}

func (c *Grammar) computeNullable() {
	c.nullable = make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, r := range c.rules {
			if c.nullable[r.lhs] {
				continue
			}
			empty := true
			for _, s := range r.rhs {
				if s.terminal() || !c.nullable[s.name] {
					empty = false
					break
				}
			}
			if empty {
				c.nullable[r.lhs] = true
				changed = true
			}
		}
	}
}

// Recognize reports whether tokens derive from the start production. The
// error, when not nil, is a *SyntaxError.
func (c *Grammar) Recognize(tokens []Token) error {
	end := 0
	if n := len(tokens); n > 0 {
		if tokens[n-1].Kind == "EOF" {
			end = tokens[n-1].Span.Start
			tokens = tokens[:n-1]
		} else {
			end = tokens[n-1].Span.End
		}
	}

	n := len(tokens)
	chart := make([][]item, n+1)
	seen := make([]map[item]bool, n+1)
	for i := range seen {
		seen[i] = make(map[item]bool)
	}
	add := func(pos int, it item) {
		if !seen[pos][it] {
			seen[pos][it] = true
			chart[pos] = append(chart[pos], it)
		}
	}

	for _, r := range c.byName[c.start] {
		add(0, item{rule: r})
	}
	for i := 0; i <= n; i++ {
		for j := 0; j < len(chart[i]); j++ {
			it := chart[i][j]
			r := c.rules[it.rule]
			if it.dot == len(r.rhs) {
				c.complete(chart, i, it, add)
				continue
			}
			next := r.rhs[it.dot]
			if next.terminal() {
				if i < n && c.matches(next, tokens[i]) {
					add(i+1, item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
				}
				continue
			}
			for _, p := range c.byName[next.name] {
				add(i, item{rule: p, origin: i})
			}
			if c.nullable[next.name] {
				add(i, item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
			}
		}
		if i < n && len(chart[i+1]) == 0 {
			return c.syntaxError(chart[i], tokens[i], false, tokens[i].Span.Start)
		}
	}

	for _, it := range chart[n] {
		r := c.rules[it.rule]
		if it.origin == 0 && r.lhs == c.start && it.dot == len(r.rhs) {
			return nil
		}
	}
	return c.syntaxError(chart[n], Token{}, true, end)
}

func (c *Grammar) complete(chart [][]item, pos int, done item, add func(int, item)) {
	lhs := c.rules[done.rule].lhs
	waiting := chart[done.origin]
	for k := 0; k < len(waiting); k++ {
		w := waiting[k]
		r := c.rules[w.rule]
		if w.dot < len(r.rhs) && r.rhs[w.dot].name == lhs {
			add(pos, item{rule: w.rule, dot: w.dot + 1, origin: w.origin})
		}
	}
}

func (c *Grammar) matches(s symbol, tok Token) bool {
	if s.class != "" {
		return tok.Kind == c.terminals[s.class] && c.Lexical(s.class, tok.Text)
	}
	return tok.Text == s.literal && !c.kinds[tok.Kind]
}

func (c *Grammar) syntaxError(items []item, found Token, atEnd bool, offset int) *SyntaxError {
	set := make(map[string]bool)
	for _, it := range items {
		r := c.rules[it.rule]
		if it.dot < len(r.rhs) && r.rhs[it.dot].terminal() {
			set[r.rhs[it.dot].String()] = true
		}
	}
	expected := make([]string, 0, len(set))
	for s := range set {
		expected = append(expected, s)
	}
	sort.Strings(expected)
	return &SyntaxError{
		Offset:   offset,
		AtEnd:    atEnd,
		Found:    found.Text,
		Expected: expected,
	}
}
