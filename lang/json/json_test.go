package json

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/lang"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/syntax"
)

type memCache struct {
	tokens []Token
	diags  []*diag.Error
	tree   *GreenNode
}

func (c *memCache) CachedTokens() []Token               { return c.tokens }
func (c *memCache) CachedLexDiagnostics() []*diag.Error { return c.diags }
func (c *memCache) CachedTree() *GreenNode              { return c.tree }

func (c *memCache) SetLexOutput(tokens []Token, diags []*diag.Error) {
	c.tokens, c.diags = tokens, diags
}

func messages(diags []*diag.Error) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func leafText(input string, root *GreenNode) string {
	var b strings.Builder
	root.WalkLeaves(func(offset int, leaf syntax.GreenLeaf[TokenKind]) bool {
		b.WriteString(input[offset : offset+leaf.Length])
		return true
	})
	return b.String()
}

func TestDecode(t *testing.T) {
	input := `{"name": "oak", "tags": ["a", "b\n"], "n": -1.5e2, "ok": true, "none": null, "nested": {"x": 0}}`
	res := New(Options{}).Build(source.New(input), nil, nil)

	require.NoError(t, res.Err)
	require.Empty(t, res.Diagnostics)
	assert.Equal(t, map[string]any{
		"name":   "oak",
		"tags":   []any{"a", "b\n"},
		"n":      -150.0,
		"ok":     true,
		"none":   nil,
		"nested": map[string]any{"x": 0.0},
	}, res.Value)
}

func TestEmptyDocument(t *testing.T) {
	for _, input := range []string{"", "   \n"} {
		res := New(Options{}).Parse(source.New(input), nil, nil)

		require.Error(t, res.Err)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diag.KindUnexpectedEOF, res.Diagnostics[0].Kind)
		assert.Equal(t, len(input), res.Value.Len())
	}
}

func TestExtensions(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		input string
		// want is a message the diagnostics must include; empty means none.
		want string
	}{
		{"trailing comma rejected", Options{}, `[1, 2,]`, "trailing comma is not allowed"},
		{"trailing comma allowed", Options{TrailingCommas: true}, `{"a": 1,}`, ""},
		{"comment rejected", Options{}, "// hi\n1", "unexpected character '/'"},
		{"comment allowed", Options{Comments: true}, "/* hi */ 1 // end", ""},
		{"bare word rejected", Options{}, `{a: 1}`, `unknown word "a"`},
		{"bare key allowed", Options{BareKeys: true}, `{a: 1}`, ""},
		{"single quotes rejected", Options{}, `{'a': 1}`, "unexpected character '\\''"},
		{"single quotes allowed", Options{SingleQuotes: true}, `{'a': 'b'}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.opts).Parse(source.New(tt.input), nil, nil)
			if tt.want == "" {
				assert.Empty(t, messages(res.Diagnostics))
			} else {
				assert.Contains(t, messages(res.Diagnostics), tt.want)
			}
			assert.Equal(t, tt.input, leafText(tt.input, res.Value))
		})
	}
}

func TestDecodeExtensions(t *testing.T) {
	l := New(Options{BareKeys: true, SingleQuotes: true, TrailingCommas: true, Comments: true})
	res := l.Build(source.New("{key: 'it\\'s', /* c */ list: [1,],}"), nil, nil)

	require.NoError(t, res.Err)
	require.Empty(t, res.Diagnostics)
	assert.Equal(t, map[string]any{"key": "it's", "list": []any{1.0}}, res.Value)
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`{"a": 1 "b": 2}`, []string{"unexpected String, expected ','"}},
		{`{"a" 1}`, []string{"unexpected Number, expected ':'"}},
		{`[1, , 3]`, []string{"unexpected ',', expected value"}},
		{`{"a": }`, []string{"unexpected '}', expected value"}},
		{`[1 2]`, []string{"unexpected Number, expected ','"}},
		{`{"a": [1, 2}`, []string{"unexpected '}', expected ']'"}},
		{`[`, []string{"unexpected end of input, expected ']'"}},
		{`1 2`, []string{"unexpected input"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := New(Options{}).Parse(source.New(tt.input), nil, nil)
			assert.NoError(t, res.Err)
			assert.Equal(t, tt.want, messages(res.Diagnostics))
			assert.True(t, res.Value.HasErrors())
			assert.Equal(t, tt.input, leafText(tt.input, res.Value))
		})
	}
}

func TestSymbolsFollowEntries(t *testing.T) {
	svc := lang.NewService[TokenKind, NodeKind](New(Options{}))
	doc := svc.Open("file:///a.json", `{"a": {"b": 1}, "c": [2]}`)

	symbols := doc.Symbols()
	require.Len(t, symbols, 2)
	assert.Equal(t, `"a"`, symbols[0].Name)
	require.Len(t, symbols[0].Children, 1)
	assert.Equal(t, `"b"`, symbols[0].Children[0].Name)
	assert.Equal(t, `"c"`, symbols[1].Name)
}

func TestGrammarVerifies(t *testing.T) {
	_, err := lang.VerifyGrammar(New(Options{}).Info())
	require.NoError(t, err)
}

var fragments = []string{
	"1", ",", ":", "{", "}", "[", "]", `"k"`, `"k": 2`, "true", "null", " ", "\n", `"`, "-", "// c\n",
}

func TestIncrementalMatchesFullParse(t *testing.T) {
	doc := `{
  "name": "oak",
  "version": 1,
  "deps": ["a", "b", {"c": [true, false, null]}],
  "nested": {"x": {"y": {"z": -1.25e3}}}
}
`
	l := New(Options{Comments: true})
	for seed := int64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			r := rand.New(rand.NewSource(seed))
			cache := &memCache{}
			text := source.New(doc)
			res := l.Parse(text, nil, cache)
			cache.tree = res.Value

			for step := 0; step < 25; step++ {
				start := r.Intn(text.Len() + 1)
				end := min(text.Len(), start+r.Intn(4))
				edit := source.Replace(source.Span{Start: start, End: end}, fragments[r.Intn(len(fragments))])
				_, err := text.ApplyEdits([]source.TextEdit{edit})
				require.NoError(t, err)

				res = l.Parse(text, []source.TextEdit{edit}, cache)
				cache.tree = res.Value
				full := l.Parse(source.New(text.String()), nil, nil)

				require.True(t, syntax.Equal(full.Value, res.Value), "step %d: %q", step, text.String())
				require.Equal(t, messages(full.Diagnostics), messages(res.Diagnostics), "step %d: %q", step, text.String())
			}
		})
	}
}

func TestIncrementalReusesSiblingEntries(t *testing.T) {
	before := `{"a": [1, 2], "b": {"c": 3}, "d": 4}`
	l := New(Options{})
	cache := &memCache{}
	first := l.Parse(source.New(before), nil, cache)
	cache.tree = first.Value

	text := source.New(before)
	at := strings.Index(before, "4")
	edit := source.Replace(source.Span{Start: at, End: at + 1}, "5")
	_, err := text.ApplyEdits([]source.TextEdit{edit})
	require.NoError(t, err)
	second := l.Parse(text, []source.TextEdit{edit}, cache)

	oldObj := first.Value.Child(0).Node
	newObj := second.Value.Child(0).Node
	require.Equal(t, KindObject, newObj.Kind())
	assert.NotSame(t, oldObj, newObj)
	// Children: '{' Entry ',' ws Entry ',' ws Entry '}'
	assert.Same(t, oldObj.Child(1).Node, newObj.Child(1).Node)
	assert.Same(t, oldObj.Child(4).Node, newObj.Child(4).Node)
	assert.NotSame(t, oldObj.Child(7).Node, newObj.Child(7).Node)
}
