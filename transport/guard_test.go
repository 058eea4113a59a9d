package transport

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func bodies(t *testing.T, g *Guard) []string {
	t.Helper()
	var out []string
	for {
		body, err := g.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, string(body))
	}
}

func TestGuardPassesWellFormedFrames(t *testing.T) {
	a := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`
	b := `{"jsonrpc":"2.0","method":"initialized","params":{}}`
	input := frame(a) + "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\n" + frame(b)

	g := NewGuard(strings.NewReader(input))
	assert.Equal(t, []string{a, b}, bodies(t, g))
	assert.Zero(t, g.Dropped())
}

func TestGuardDropsMalformedFrames(t *testing.T) {
	good := `{"jsonrpc":"2.0","method":"initialized"}`
	after := `{"jsonrpc":"2.0","id":2,"method":"shutdown"}`

	tests := []struct {
		name string
		bad  string
	}{
		{"invalid length", "Content-Length: abc\r\n\r\n{}"},
		{"negative length", "Content-Length: -3\r\n\r\n{}"},
		{"zero length", "Content-Length: 0\r\n\r\n"},
		{"missing length", "Content-Type: text/plain\r\n\r\n{}"},
		{"header without colon", "garbage line\r\n\r\n"},
		{"not json", frame(`{"jsonrpc":`)},
		{"oversized", "Content-Length: 999999\r\n\r\n{}"},
		{"length too long swallows next header", "Content-Length: 20\r\n\r\n{}"},
		{"length too short", "Content-Length: 3\r\n\r\n{\"a\": 1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := frame(good) + tt.bad + frame(after)
			g := NewGuard(strings.NewReader(input), WithMaxLength(1000))

			assert.Equal(t, []string{good, after}, bodies(t, g))
			assert.Equal(t, 1, g.Dropped())
		})
	}
}

func TestGuardDropsNonMessages(t *testing.T) {
	before := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`
	after := `{"jsonrpc":"2.0","id":2,"method":"shutdown"}`

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"array", `[1,2]`},
		{"batch", `[{"jsonrpc":"2.0","method":"initialized"}]`},
		{"string", `"hello"`},
		{"missing version", `{"id":3,"method":"shutdown"}`},
		{"wrong version", `{"jsonrpc":"1.0","id":3,"method":"shutdown"}`},
		{"object id", `{"jsonrpc":"2.0","id":{},"method":"x"}`},
		{"negative id", `{"jsonrpc":"2.0","id":-1,"method":"x"}`},
		{"fractional id", `{"jsonrpc":"2.0","id":1.5,"method":"x"}`},
		{"numeric method", `{"jsonrpc":"2.0","id":3,"method":7}`},
		{"null method", `{"jsonrpc":"2.0","id":3,"method":null}`},
		{"scalar params", `{"jsonrpc":"2.0","id":3,"method":"x","params":5}`},
		{"request and response", `{"jsonrpc":"2.0","id":3,"method":"x","result":1}`},
		{"string error", `{"jsonrpc":"2.0","id":3,"error":"boom"}`},
		{"neither", `{"jsonrpc":"2.0","id":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(strings.NewReader(frame(before) + frame(tt.body) + frame(after)))
			assert.Equal(t, []string{before, after}, bodies(t, g))
			assert.Equal(t, 1, g.Dropped())
		})
	}
}

func TestGuardAcceptsMessages(t *testing.T) {
	tests := []string{
		`{"jsonrpc":"2.0","id":"abc","method":"x"}`,
		`{"jsonrpc":"2.0","id":null,"method":"x","params":null}`,
		`{"jsonrpc":"2.0","method":"x","params":[1]}`,
		`{"jsonrpc":"2.0","id":4,"result":null}`,
		`{"jsonrpc":"2.0","id":4,"result":{"ok":true},"error":null}`,
		`{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"nope"}}`,
	}
	for _, body := range tests {
		g := NewGuard(strings.NewReader(frame(body)))
		assert.Equal(t, []string{body}, bodies(t, g), body)
		assert.Zero(t, g.Dropped(), body)
	}
}

func TestGuardTruncatedInput(t *testing.T) {
	good := `{"jsonrpc":"2.0","id":1,"result":null}`
	g := NewGuard(strings.NewReader(frame(good) + "Content-Length: 50\r\n\r\n{\"id\":"))

	assert.Equal(t, []string{good}, bodies(t, g))
	assert.Equal(t, 1, g.Dropped())
}

func TestGuardEmptyInput(t *testing.T) {
	g := NewGuard(strings.NewReader(""))
	_, err := g.Next()
	assert.Equal(t, io.EOF, err)
}

func TestGuardReadReframes(t *testing.T) {
	a := `{"jsonrpc":"2.0","id":1,"method":"x"}`
	b := `{"jsonrpc":"2.0","id":2,"method":"y"}`
	input := "\r\n" + frame(a) + "Content-Length: x\r\n\r\n" + frame(b)

	out, err := io.ReadAll(NewGuard(strings.NewReader(input)))
	require.NoError(t, err)
	assert.Equal(t, frame(a)+frame(b), string(out))
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte(`{"ok":true}`)))
	assert.Equal(t, "Content-Length: 11\r\n\r\n{\"ok\":true}", buf.String())
}

type closeRecorder struct {
	io.Reader
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestStream(t *testing.T) {
	msg := `{"jsonrpc":"2.0","id":1,"method":"x"}`
	in := &closeRecorder{Reader: strings.NewReader(frame(msg))}
	var out bytes.Buffer
	s := NewStream(in, &out)

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, frame(msg), string(got))

	_, err = s.Write([]byte("reply"))
	require.NoError(t, err)
	assert.Equal(t, "reply", out.String())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, in.closed)
}

type conn struct {
	*strings.Reader
	bytes.Buffer
	closed int
}

func (c *conn) Read(p []byte) (int, error) { return c.Reader.Read(p) }

func (c *conn) Close() error {
	c.closed++
	return nil
}

func TestStreamClosesSharedConnectionOnce(t *testing.T) {
	c := &conn{Reader: strings.NewReader("")}
	s := NewStream(c, c)
	require.NoError(t, s.Close())
	assert.Equal(t, 1, c.closed)
}
