package json

import (
	stdjson "encoding/json"
	"strconv"
	"strings"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/parser"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

// Build parses src and decodes the document into Go values: objects become
// map[string]any, arrays []any, numbers float64, strings string, booleans
// bool and null nil. Missing or malformed values decode as nil.
func (l *Language) Build(src source.Source, edits []source.TextEdit, cache parser.Cache[TokenKind, NodeKind]) diag.Result[any] {
	res := l.Parse(src, edits, cache)
	if res.Err != nil {
		return diag.Fail[any](res.Err, res.Diagnostics)
	}
	d := &decoder{src: src}
	var value any
	for _, c := range syntax.NewRoot(res.Value).Children() {
		if n, ok := c.Node(); ok && n.Kind() != KindError {
			value = d.decode(n)
			break
		}
	}
	return diag.Ok(value, res.Diagnostics)
}

type decoder struct {
	src source.Source
}

func (d *decoder) token(n RedNode) (syntax.RedLeaf[TokenKind], bool) {
	for _, leaf := range n.Leaves() {
		if !leaf.Kind.Role().IsTrivia() {
			return leaf, true
		}
	}
	return syntax.RedLeaf[TokenKind]{}, false
}

func (d *decoder) decode(n RedNode) any {
	switch n.Kind() {
	case KindObject:
		obj := map[string]any{}
		for _, c := range n.Children() {
			entry, ok := c.Node()
			if !ok || entry.Kind() != KindEntry {
				continue
			}
			var key string
			var value any
			for _, ec := range entry.Children() {
				en, ok := ec.Node()
				if !ok {
					continue
				}
				if en.Kind() == KindKey {
					if leaf, ok := d.token(en); ok {
						key = d.unquote(d.src.TextIn(leaf.Span))
					}
					continue
				}
				value = d.decode(en)
			}
			obj[key] = value
		}
		return obj
	case KindArray:
		arr := []any{}
		for _, c := range n.Children() {
			if cn, ok := c.Node(); ok {
				arr = append(arr, d.decode(cn))
			}
		}
		return arr
	}

	leaf, ok := d.token(n)
	if !ok {
		return nil
	}
	text := d.src.TextIn(leaf.Span)
	switch n.Kind() {
	case KindString:
		return d.unquote(text)
	case KindNumber:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil
		}
		return f
	case KindBoolean:
		return text == "true"
	}
	return nil
}

// unquote decodes a string or bare key. Single-quoted strings are decoded
// as their double-quoted equivalent.
func (d *decoder) unquote(text string) string {
	if strings.HasPrefix(text, "'") {
		body := strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'")
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
		text = `"` + body + `"`
	}
	if !strings.HasPrefix(text, `"`) {
		return text
	}
	var s string
	if err := stdjson.Unmarshal([]byte(text), &s); err != nil {
		return strings.Trim(text, `"`)
	}
	return s
}
