package format

import (
	"encoding/json"
	"io"
)

type TreeJSONEncoder struct {
	w io.Writer
}

func NewTreeJSONEncoder(w io.Writer) *TreeJSONEncoder {
	return &TreeJSONEncoder{w: w}
}

func (e *TreeJSONEncoder) Encode(node *Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeJSONEncoder) MarshalText(node *Node) ([]byte, error) {
	return json.MarshalIndent(nodeToJSON(node), "", "  ")
}

// EncodeTokens writes a token stream as a JSON array.
func (e *TreeJSONEncoder) EncodeTokens(tokens []*Node) error {
	out := make([]*treeJSONNode, len(tokens))
	for i, tok := range tokens {
		out[i] = nodeToJSON(tok)
	}
	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

type treeJSONNode struct {
	Kind     string          `json:"kind"`
	Role     string          `json:"role,omitempty"`
	Span     treeJSONSpan    `json:"span"`
	Text     *string         `json:"text,omitempty"`
	Error    bool            `json:"error,omitempty"`
	Children []*treeJSONNode `json:"children,omitempty"`
}

type treeJSONSpan struct {
	Start treeJSONPosition `json:"start"`
	End   treeJSONPosition `json:"end"`
}

type treeJSONPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func nodeToJSON(n *Node) *treeJSONNode {
	jn := &treeJSONNode{
		Kind:  n.Kind,
		Role:  n.Role,
		Error: n.Error,
		Span: treeJSONSpan{
			Start: treeJSONPosition{Offset: n.Span.Start, Line: n.Start.Line, Column: n.Start.Column},
			End:   treeJSONPosition{Offset: n.Span.End, Line: n.End.Line, Column: n.End.Column},
		},
	}

	if n.Token {
		text := n.Text
		jn.Text = &text
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*treeJSONNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child)
		}
	}

	return jn
}
