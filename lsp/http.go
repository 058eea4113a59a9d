package lsp

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/tliron/glsp"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// httpReply is a JSON-RPC response plus the notifications the server sent
// while handling the request. ID and Result are absent for notifications.
type httpReply struct {
	JSONRPC       string            `json:"jsonrpc"`
	ID            json.RawMessage   `json:"id,omitempty"`
	Result        any               `json:"result,omitempty"`
	Error         *rpcError         `json:"error,omitempty"`
	Notifications []rpcNotification `json:"notifications"`
}

// HTTPHandler serves POST /rpc: one JSON-RPC message per request, handled
// by the same dispatcher as the stream transports.
func (s *Server) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.serveRPC)
	return mux
}

func (s *Server) RunHTTP(address string) error {
	log.Noticef("listening for HTTP on %s", address)
	return http.ListenAndServe(address, s.HTTPHandler())
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(s.maxFrame)+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > s.maxFrame {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}
	writeReply(w, s.dispatch(body))
}

func (s *Server) dispatch(body []byte) httpReply {
	reply := httpReply{JSONRPC: "2.0", Notifications: []rpcNotification{}}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		reply.Error = &rpcError{Code: codeParseError, Message: err.Error()}
		return reply
	}
	reply.ID = req.ID
	if req.JSONRPC != "2.0" || req.Method == "" {
		reply.Error = &rpcError{Code: codeInvalidRequest, Message: "invalid request"}
		return reply
	}

	var mu sync.Mutex
	ctx := &glsp.Context{
		Method: req.Method,
		Params: req.Params,
		Notify: func(method string, params any) {
			mu.Lock()
			defer mu.Unlock()
			reply.Notifications = append(reply.Notifications, rpcNotification{JSONRPC: "2.0", Method: method, Params: params})
		},
		Call: func(method string, params any, result any) {
			log.Warningf("dropping server request %s: not supported over HTTP", method)
		},
	}
	if len(ctx.Params) == 0 {
		ctx.Params = json.RawMessage("null")
	}

	result, validMethod, validParams, err := s.Handle(ctx)
	switch {
	case !validMethod:
		reply.Error = &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
	case !validParams:
		reply.Error = &rpcError{Code: codeInvalidParams, Message: "invalid params for " + req.Method}
	case err != nil:
		reply.Error = &rpcError{Code: codeInternalError, Message: err.Error()}
	case len(req.ID) > 0:
		reply.Result = result
		if result == nil {
			reply.Result = json.RawMessage("null")
		}
	}
	return reply
}

func writeReply(w http.ResponseWriter, reply httpReply) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		log.Errorf("write reply: %s", err)
	}
}
