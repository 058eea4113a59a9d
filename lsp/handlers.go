package lsp

import (
	"errors"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/oak/lang"
	"github.com/dhamidi/oak/source"
	"github.com/dhamidi/oak/workspace"
)

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		log.Infof("initializing for %s", params.ClientInfo.Name)
	}
	s.mu.Lock()
	s.shutdown = false
	s.mu.Unlock()

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: s.triggerCharacters(),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Infof("client initialized, languages: %v", s.registry.Names())
	return nil
}

func (s *Server) shutdownRequest(ctx *glsp.Context) error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	log.Info("shutdown requested")
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	entry, err := s.store.Open(doc.URI, doc.LanguageID, doc.Text, doc.Version)
	if errors.Is(err, workspace.ErrUnknownLanguage) {
		log.Warningf("ignoring %s: %s", doc.URI, err)
		return nil
	}
	if err != nil {
		return err
	}
	return s.publish(ctx, entry)
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	entry, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		log.Warningf("change for unknown document %s", params.TextDocument.URI)
		return nil
	}
	err := entry.Update(params.TextDocument.Version, func(doc lang.Document) error {
		// Each change is expressed in the text produced by the one
		// before it, so every change is its own batch.
		for i, change := range params.ContentChanges {
			if err := applyChange(doc, change); err != nil {
				return fmt.Errorf("%s: change %d: %w", params.TextDocument.URI, i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.publish(ctx, entry)
}

func applyChange(doc lang.Document, change any) error {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEvent:
		return applyRangeChange(doc, &c)
	case *protocol.TextDocumentContentChangeEvent:
		return applyRangeChange(doc, c)
	case protocol.TextDocumentContentChangeEventWhole:
		doc.Replace(c.Text)
	case *protocol.TextDocumentContentChangeEventWhole:
		doc.Replace(c.Text)
	default:
		return fmt.Errorf("unsupported content change %T", change)
	}
	return nil
}

func applyRangeChange(doc lang.Document, c *protocol.TextDocumentContentChangeEvent) error {
	if c.Range == nil {
		doc.Replace(c.Text)
		return nil
	}
	span := toSpan(doc.Source(), *c.Range)
	return doc.Apply(source.Replace(span, c.Text))
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	entry, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		return nil
	}
	if params.Text != nil {
		err := entry.Update(entry.Version(), func(doc lang.Document) error {
			if doc.Source().String() != *params.Text {
				doc.Replace(*params.Text)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return s.publish(ctx, entry)
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	if s.store.Close(params.TextDocument.URI) {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         params.TextDocument.URI,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func (s *Server) publish(ctx *glsp.Context, entry *workspace.Entry) error {
	var diagnostics []protocol.Diagnostic
	err := entry.Read(func(doc lang.Document) error {
		diagnostics = toDiagnostics(doc.Source(), s.name, doc.Diagnostics())
		if err := doc.Err(); err != nil {
			log.Debugf("%s: %s", entry.URI(), err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         entry.URI(),
		Diagnostics: diagnostics,
	})
	return nil
}

// withDocument runs fn on the open document at uri, converting pos to an
// offset. Unknown documents yield no result.
func (s *Server) withDocument(uri string, pos protocol.Position, fn func(doc lang.Document, offset int)) error {
	entry, ok := s.store.Get(uri)
	if !ok {
		return nil
	}
	return entry.Read(func(doc lang.Document) error {
		fn(doc, toOffset(doc.Source(), pos))
		return nil
	})
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	var result *protocol.Hover
	err := s.withDocument(params.TextDocument.URI, params.Position, func(doc lang.Document, offset int) {
		h, ok := doc.Hover(offset)
		if !ok {
			return
		}
		r := toRange(doc.Source(), h.Span)
		result = &protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: h.Markdown},
			Range:    &r,
		}
	})
	return result, err
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	var items []protocol.CompletionItem
	err := s.withDocument(params.TextDocument.URI, params.Position, func(doc lang.Document, offset int) {
		items = toCompletionItems(doc.Completions(offset))
	})
	if err != nil || items == nil {
		return nil, err
	}
	return items, nil
}

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	var result any
	uri := params.TextDocument.URI
	err := s.withDocument(uri, params.Position, func(doc lang.Document, offset int) {
		if span, ok := doc.Definition(offset); ok {
			result = protocol.Location{URI: uri, Range: toRange(doc.Source(), span)}
		}
	})
	return result, err
}

func (s *Server) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	var result []protocol.Location
	uri := params.TextDocument.URI
	err := s.withDocument(uri, params.Position, func(doc lang.Document, offset int) {
		var skip source.Span
		if !params.Context.IncludeDeclaration {
			skip, _ = doc.Definition(offset)
		}
		for _, span := range doc.References(offset) {
			if span == skip && !skip.IsEmpty() {
				continue
			}
			result = append(result, protocol.Location{URI: uri, Range: toRange(doc.Source(), span)})
		}
	})
	return result, err
}

func (s *Server) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	entry, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	var symbols []protocol.DocumentSymbol
	err := entry.Read(func(doc lang.Document) error {
		symbols = toSymbols(doc.Source(), doc.Symbols())
		return nil
	})
	return symbols, err
}

func (s *Server) textDocumentRename(ctx *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	if params.NewName == "" {
		return nil, errors.New("new name must not be empty")
	}
	var edits []protocol.TextEdit
	uri := params.TextDocument.URI
	err := s.withDocument(uri, params.Position, func(doc lang.Document, offset int) {
		for _, span := range doc.References(offset) {
			edits = append(edits, protocol.TextEdit{Range: toRange(doc.Source(), span), NewText: params.NewName})
		}
	})
	if err != nil || len(edits) == 0 {
		return nil, err
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
	}, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
