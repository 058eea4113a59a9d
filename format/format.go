package format

import (
	"fmt"
	"io"
)

// Encoder writes tree and token snapshots in one output format.
type Encoder interface {
	Encode(node *Node) error
	EncodeTokens(tokens []*Node) error
}

// NewEncoder returns the encoder for a format name, "text" or "json". Text
// output is rendered with styles.
func NewEncoder(name string, w io.Writer, styles *Styles) (Encoder, error) {
	switch name {
	case "text":
		return NewTextEncoder(w, styles), nil
	case "json":
		return NewTreeJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}
