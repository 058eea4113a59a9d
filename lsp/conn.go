package lsp

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/oak/transport"
)

// serveStream runs one JSON-RPC connection on stream until it disconnects.
// The stream's input is guarded so malformed frames never reach jsonrpc2.
func (s *Server) serveStream(ctx context.Context, stream *transport.Stream) {
	var opts []jsonrpc2.ConnOpt
	if s.debug {
		opts = append(opts, jsonrpc2.LogMessages(rpcLogger{commonlog.GetLogger("oak.lsp.rpc")}))
	}
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(s.handleRPC),
		opts...)
	<-conn.DisconnectNotify()
	if n := stream.Dropped(); n > 0 {
		log.Warningf("dropped %d malformed frames", n)
	}
}

func (s *Server) handleRPC(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	gctx := &glsp.Context{
		Method: req.Method,
		Notify: func(method string, params any) {
			if err := conn.Notify(ctx, method, params); err != nil {
				log.Errorf("notify %s: %s", method, err)
			}
		},
		Call: func(method string, params any, result any) {
			if err := conn.Call(ctx, method, params, result); err != nil {
				log.Errorf("call %s: %s", method, err)
			}
		},
	}
	if req.Params != nil {
		gctx.Params = *req.Params
	}

	r, validMethod, validParams, err := s.Handle(gctx)
	if req.Method == protocol.MethodExit {
		return nil, conn.Close()
	}
	switch {
	case !validMethod:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found: " + req.Method}
	case !validParams:
		msg := "invalid params for " + req.Method
		if err != nil {
			msg = err.Error()
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: msg}
	case err != nil:
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}
	return r, nil
}

// RunStdio serves one client on in and out until the input ends.
func (s *Server) RunStdio(in io.Reader, out io.Writer) error {
	log.Notice("serving on stdio")
	s.serveStream(context.Background(), transport.NewStream(in, out, transport.WithMaxLength(s.maxFrame)))
	return nil
}

// RunTCP listens on address and serves every connection.
func (s *Server) RunTCP(address string) error {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	defer l.Close()
	log.Noticef("listening for TCP connections on %s", address)
	return s.Serve(l)
}

// Serve accepts connections on l and serves each one concurrently until
// Accept fails.
func (s *Server) Serve(l net.Listener) error {
	for id := 1; ; id++ {
		c, err := l.Accept()
		if err != nil {
			return err
		}
		log.Infof("connection #%d from %s", id, c.RemoteAddr())
		go func(id int) {
			s.serveStream(context.Background(), transport.NewStream(c, c, transport.WithMaxLength(s.maxFrame)))
			log.Infof("connection #%d closed", id)
		}(id)
	}
}

// RunWebSocket serves clients over WebSocket. Messages arrive as whole
// WebSocket frames, so there is no Content-Length framing to guard.
func (s *Server) RunWebSocket(address string) error {
	return s.server.RunWebSocket(address)
}

type rpcLogger struct {
	log commonlog.Logger
}

func (l rpcLogger) Printf(format string, v ...any) {
	l.log.Debugf(strings.TrimSuffix(format, "\n"), v...)
}
