// Package transport protects the language server's input stream.
//
// Editors speak JSON-RPC in Content-Length framed messages. A Guard reads
// those frames from the raw input, drops the malformed ones and passes the
// rest on unchanged, so one bad message cannot take the server down.
package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("oak.transport")

const contentLength = "Content-Length"

// DefaultMaxLength bounds a frame body.
const DefaultMaxLength = 64 << 20

// FrameError describes a dropped frame.
type FrameError struct {
	Reason   string
	// complete is set when the frame itself was read whole and only its
	// message was rejected, so the input is still in sync.
	complete bool
}

func (e *FrameError) Error() string {
	return "malformed frame: " + e.Reason
}

type Option func(*Guard)

// WithMaxLength sets the largest accepted body in bytes.
func WithMaxLength(n int) Option {
	return func(g *Guard) { g.maxLength = n }
}

// Guard is an io.Reader that yields only well-formed frames.
type Guard struct {
	in        *bufio.Reader
	pending   []byte
	maxLength int
	dropped   int
	resync    bool
}

func NewGuard(r io.Reader, opts ...Option) *Guard {
	g := &Guard{in: bufio.NewReader(r), maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dropped returns how many malformed frames were discarded.
func (g *Guard) Dropped() int {
	return g.dropped
}

func (g *Guard) Read(p []byte) (int, error) {
	for len(g.pending) == 0 {
		frame, err := g.Next()
		if err != nil {
			return 0, err
		}
		g.pending = encodeFrame(frame)
	}
	n := copy(p, g.pending)
	g.pending = g.pending[n:]
	return n, nil
}

// Next returns the body of the next well-formed frame. It returns io.EOF
// once the input ends; a frame cut short by the end of input is dropped.
func (g *Guard) Next() ([]byte, error) {
	for {
		body, raw, err := g.readFrame()
		if err == nil {
			return body, nil
		}
		var fe *FrameError
		if !errors.As(err, &fe) {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				g.dropped++
				log.Warningf("dropping frame cut short by end of input (%d bytes)", len(raw))
				return nil, io.EOF
			}
			return nil, err
		}
		g.dropped++
		if fe.complete {
			log.Warningf("%s", fe.Error())
			continue
		}
		log.Warningf("%s; resynchronising", fe.Error())
		g.pushBack(raw)
		g.resync = true
	}
}

// pushBack returns the part of a dropped frame that may hold the start of
// the next one to the input.
func (g *Guard) pushBack(raw []byte) {
	if len(raw) == 0 {
		return
	}
	i := bytes.Index(raw[1:], []byte(contentLength+":"))
	if i < 0 {
		return
	}
	rest := append([]byte(nil), raw[i+1:]...)
	g.in = bufio.NewReader(io.MultiReader(bytes.NewReader(rest), g.in))
}

// readFrame reads one frame. raw holds every byte consumed for it.
func (g *Guard) readFrame() (body, raw []byte, err error) {
	length := -1
	headers := 0
	for {
		line, err := g.in.ReadString('\n')
		raw = append(raw, line...)
		if err != nil {
			if err == io.EOF && len(raw) == 0 {
				return nil, nil, io.EOF
			}
			if err == io.EOF {
				return nil, raw, io.ErrUnexpectedEOF
			}
			return nil, raw, err
		}
		line = strings.TrimRight(line, "\r\n")
		if g.resync {
			// The header may follow the tail of the dropped body on one line.
			i := strings.Index(strings.ToLower(line), strings.ToLower(contentLength)+":")
			if i < 0 {
				raw = raw[:0]
				continue
			}
			line = line[i:]
			raw = append(raw[:0], line...)
			g.resync = false
		}
		if line == "" {
			if headers == 0 {
				raw = raw[:0]
				continue
			}
			break
		}
		headers++

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, raw, &FrameError{Reason: fmt.Sprintf("invalid header line %q", line)}
		}
		if !strings.EqualFold(strings.TrimSpace(name), contentLength) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return nil, raw, &FrameError{Reason: fmt.Sprintf("invalid Content-Length %q", strings.TrimSpace(value))}
		}
		if n > g.maxLength {
			return nil, raw, &FrameError{Reason: fmt.Sprintf("Content-Length %d exceeds limit %d", n, g.maxLength)}
		}
		length = n
	}
	if length < 0 {
		return nil, raw, &FrameError{Reason: "missing Content-Length header"}
	}

	body = make([]byte, length)
	n, err := io.ReadFull(g.in, body)
	raw = append(raw, body[:n]...)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, raw, err
	}
	if !json.Valid(body) {
		return nil, raw, &FrameError{Reason: "body is not valid JSON"}
	}
	if err := checkMessage(body); err != nil {
		return nil, raw, &FrameError{Reason: err.Error(), complete: true}
	}
	return body, raw, nil
}

// checkMessage accepts a single JSON-RPC 2.0 request, notification or
// response. Anything else would make the connection fail to decode it.
func checkMessage(body []byte) error {
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return errors.New("body is not a JSON-RPC object")
	}
	var version string
	if err := json.Unmarshal(msg["jsonrpc"], &version); err != nil || version != "2.0" {
		return errors.New(`jsonrpc must be "2.0"`)
	}
	if id, ok := msg["id"]; ok && !validID(id) {
		return fmt.Errorf("invalid id %s", id)
	}

	method, isRequest := msg["method"]
	_, hasResult := msg["result"]
	rpcErr, hasError := msg["error"]
	isResponse := hasResult || (hasError && !isNull(rpcErr))
	switch {
	case isRequest && isResponse:
		return errors.New("message is both a request and a response")
	case isRequest:
		var name string
		if err := json.Unmarshal(method, &name); err != nil || isNull(method) {
			return errors.New("method must be a string")
		}
		if params, ok := msg["params"]; ok && !isNull(params) {
			if c := firstByte(params); c != '{' && c != '[' {
				return errors.New("params must be an object or an array")
			}
		}
	case isResponse:
		if hasError && !isNull(rpcErr) && firstByte(rpcErr) != '{' {
			return errors.New("error must be an object")
		}
	default:
		return errors.New("message has neither a method nor a result or error")
	}
	return nil
}

// validID accepts the ids a connection can echo back: null, a string, or
// a non-negative integer.
func validID(id json.RawMessage) bool {
	if isNull(id) {
		return true
	}
	var s string
	if json.Unmarshal(id, &s) == nil {
		return true
	}
	var n uint64
	return json.Unmarshal(id, &n) == nil
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

func firstByte(v json.RawMessage) byte {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func encodeFrame(body []byte) []byte {
	header := fmt.Sprintf("%s: %d\r\n\r\n", contentLength, len(body))
	return append([]byte(header), body...)
}

// WriteFrame writes body as one Content-Length frame.
func WriteFrame(w io.Writer, body []byte) error {
	_, err := w.Write(encodeFrame(body))
	return err
}
