// Package lsp serves oak's languages to editors over the Language Server
// Protocol.
package lsp

import (
	"os"
	"sort"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/oak/lang"
	"github.com/dhamidi/oak/transport"
	"github.com/dhamidi/oak/workspace"
)

var log = commonlog.GetLogger("oak.lsp")

type Options struct {
	// Name is reported to clients and used as the diagnostic source.
	Name    string
	Version string
	Debug   bool
	// Exit ends the process when the client sends exit. It defaults to
	// os.Exit.
	Exit func(code int)
	// MaxFrameLength bounds a message read from stdio, TCP or HTTP.
	MaxFrameLength int
}

type Server struct {
	name     string
	version  string
	registry *lang.Registry
	store    *workspace.Store
	handler  protocol.Handler
	server   *server.Server
	exit     func(code int)
	maxFrame int
	debug    bool

	mu       sync.Mutex
	shutdown bool
}

func New(registry *lang.Registry, opts Options) *Server {
	s := &Server{
		name:     opts.Name,
		version:  opts.Version,
		registry: registry,
		store:    workspace.New(registry),
		exit:     opts.Exit,
		maxFrame: opts.MaxFrameLength,
		debug:    opts.Debug,
	}
	if s.name == "" {
		s.name = "oak"
	}
	if s.exit == nil {
		s.exit = os.Exit
	}
	if s.maxFrame <= 0 {
		s.maxFrame = transport.DefaultMaxLength
	}

	s.handler = protocol.Handler{
		Initialize:                 s.initialize,
		Initialized:                s.initialized,
		Shutdown:                   s.shutdownRequest,
		SetTrace:                   s.setTrace,
		TextDocumentDidOpen:        s.textDocumentDidOpen,
		TextDocumentDidChange:      s.textDocumentDidChange,
		TextDocumentDidSave:        s.textDocumentDidSave,
		TextDocumentDidClose:       s.textDocumentDidClose,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentRename:         s.textDocumentRename,
	}
	s.server = server.NewServer(s, s.name, opts.Debug)
	return s
}

// Store returns the open documents.
func (s *Server) Store() *workspace.Store {
	return s.store
}

// Handle dispatches one message. exit is answered here because the
// protocol handler refuses every message once shutdown has run.
func (s *Server) Handle(ctx *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	if ctx.Method == protocol.MethodExit {
		s.mu.Lock()
		code := 1
		if s.shutdown {
			code = 0
		}
		s.mu.Unlock()
		log.Infof("exit requested, code %d", code)
		s.exit(code)
		return nil, true, true, nil
	}
	return s.handler.Handle(ctx)
}

// triggerCharacters collects the completion triggers of every language.
func (s *Server) triggerCharacters() []string {
	seen := map[string]bool{}
	var out []string
	for _, name := range s.registry.Names() {
		svc, ok := s.registry.Lookup(name)
		if !ok {
			continue
		}
		for _, c := range svc.Info().TriggerCharacters {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}
