package transport

import (
	"io"
	"reflect"
	"sync"
)

// Stream joins a guarded input and an output into the io.ReadWriteCloser a
// JSON-RPC connection is served on.
type Stream struct {
	*Guard
	out     io.Writer
	closers []io.Closer
	once    sync.Once
}

// NewStream guards in and writes to out. Closing the stream closes in and
// out when they are closers, once each when they are the same connection.
func NewStream(in io.Reader, out io.Writer, opts ...Option) *Stream {
	s := &Stream{Guard: NewGuard(in, opts...), out: out}
	if c, ok := in.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}
	if c, ok := out.(io.Closer); ok && !same(in, out) {
		s.closers = append(s.closers, c)
	}
	return s
}

func same(a, b any) bool {
	t := reflect.TypeOf(a)
	return t == reflect.TypeOf(b) && t.Comparable() && a == b
}

func (s *Stream) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stream) Close() error {
	var first error
	s.once.Do(func() {
		for _, c := range s.closers {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	})
	return first
}
