package lsp_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/oak/lang"
	"github.com/dhamidi/oak/lang/calc"
	jsonlang "github.com/dhamidi/oak/lang/json"
	"github.com/dhamidi/oak/lsp"
)

const uri = "file:///work/main.calc"

type notification struct {
	method string
	params any
}

type client struct {
	t      *testing.T
	server *lsp.Server
	notes  []notification
	exits  []int
}

func newClient(t *testing.T) *client {
	c := &client{t: t}
	registry := lang.NewRegistry(
		lang.NewService[calc.TokenKind, calc.NodeKind](calc.New()),
		lang.NewService[jsonlang.TokenKind, jsonlang.NodeKind](jsonlang.New(jsonlang.Options{Comments: true})),
	)
	c.server = lsp.New(registry, lsp.Options{
		Name:    "oak-test",
		Version: "0.0.1",
		Exit:    func(code int) { c.exits = append(c.exits, code) },
	})
	return c
}

func (c *client) send(method string, params any) (any, bool, bool, error) {
	c.t.Helper()
	data, err := json.Marshal(params)
	require.NoError(c.t, err)
	ctx := &glsp.Context{
		Method: method,
		Params: data,
		Notify: func(method string, params any) {
			c.notes = append(c.notes, notification{method: method, params: params})
		},
	}
	return c.server.Handle(ctx)
}

func (c *client) call(method string, params any) any {
	c.t.Helper()
	r, validMethod, validParams, err := c.send(method, params)
	require.True(c.t, validMethod, method)
	require.True(c.t, validParams, method)
	require.NoError(c.t, err, method)
	return r
}

func (c *client) initialize() {
	c.t.Helper()
	c.call(protocol.MethodInitialize, map[string]any{"capabilities": map[string]any{}})
	c.call(protocol.MethodInitialized, map[string]any{})
}

// diagnostics returns the last diagnostics published and clears the log.
func (c *client) diagnostics() protocol.PublishDiagnosticsParams {
	c.t.Helper()
	require.NotEmpty(c.t, c.notes)
	last := c.notes[len(c.notes)-1]
	c.notes = nil
	require.Equal(c.t, protocol.ServerTextDocumentPublishDiagnostics, last.method)
	return last.params.(protocol.PublishDiagnosticsParams)
}

func pos(line, char int) map[string]any {
	return map[string]any{"line": line, "character": char}
}

func at(line, char int) map[string]any {
	return map[string]any{"textDocument": map[string]any{"uri": uri}, "position": pos(line, char)}
}

func TestInitializeAdvertisesCapabilities(t *testing.T) {
	c := newClient(t)
	r := c.call(protocol.MethodInitialize, map[string]any{"capabilities": map[string]any{}})

	result, ok := r.(protocol.InitializeResult)
	require.True(t, ok, "%T", r)
	assert.Equal(t, "oak-test", result.ServerInfo.Name)
	assert.Equal(t, "0.0.1", *result.ServerInfo.Version)

	caps := result.Capabilities
	sync, ok := caps.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	assert.Equal(t, protocol.TextDocumentSyncKindIncremental, *sync.Change)
	require.NotNil(t, caps.CompletionProvider)
	assert.Equal(t, []string{"\"", "."}, caps.CompletionProvider.TriggerCharacters)
	assert.NotNil(t, caps.HoverProvider)
	assert.NotNil(t, caps.DefinitionProvider)
	assert.NotNil(t, caps.ReferencesProvider)
	assert.NotNil(t, caps.DocumentSymbolProvider)
	assert.NotNil(t, caps.RenameProvider)
}

func TestDocumentLifecycle(t *testing.T) {
	c := newClient(t)
	c.initialize()

	c.call(protocol.MethodTextDocumentDidOpen, map[string]any{
		"textDocument": map[string]any{
			"uri": uri, "languageId": "calc", "version": 1,
			"text": "let a = 1;\nlet b = a +;\n",
		},
	})
	published := c.diagnostics()
	assert.Equal(t, uri, published.URI)
	require.Len(t, published.Diagnostics, 1)
	d := published.Diagnostics[0]
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 11},
		End:   protocol.Position{Line: 1, Character: 12},
	}, d.Range)
	assert.Equal(t, "oak-test", *d.Source)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)

	// The second change is positioned in the text the first one produced.
	c.call(protocol.MethodTextDocumentDidChange, map[string]any{
		"textDocument": map[string]any{"uri": uri, "version": 2},
		"contentChanges": []any{
			map[string]any{"range": map[string]any{"start": pos(1, 11), "end": pos(1, 11)}, "text": " 2"},
			map[string]any{"range": map[string]any{"start": pos(1, 4), "end": pos(1, 5)}, "text": "c"},
		},
	})
	assert.Empty(t, c.diagnostics().Diagnostics)

	entry, ok := c.server.Store().Get(uri)
	require.True(t, ok)
	assert.Equal(t, int32(2), entry.Version())
	require.NoError(t, entry.Read(func(doc lang.Document) error {
		assert.Equal(t, "let a = 1;\nlet c = a + 2;\n", doc.Source().String())
		return nil
	}))

	c.call(protocol.MethodTextDocumentDidChange, map[string]any{
		"textDocument":   map[string]any{"uri": uri, "version": 3},
		"contentChanges": []any{map[string]any{"text": "let z = ;"}},
	})
	assert.Len(t, c.diagnostics().Diagnostics, 1)

	c.call(protocol.MethodTextDocumentDidSave, map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"text":         "let z = 0;",
	})
	assert.Empty(t, c.diagnostics().Diagnostics)

	c.call(protocol.MethodTextDocumentDidClose, map[string]any{"textDocument": map[string]any{"uri": uri}})
	closed := c.diagnostics()
	assert.NotNil(t, closed.Diagnostics)
	assert.Empty(t, closed.Diagnostics)
	_, ok = c.server.Store().Get(uri)
	assert.False(t, ok)
}

func TestUnknownLanguageIsIgnored(t *testing.T) {
	c := newClient(t)
	c.initialize()

	c.call(protocol.MethodTextDocumentDidOpen, map[string]any{
		"textDocument": map[string]any{"uri": "file:///notes.txt", "languageId": "plaintext", "version": 1, "text": "hi"},
	})
	assert.Empty(t, c.notes)

	r := c.call(protocol.MethodTextDocumentHover, map[string]any{
		"textDocument": map[string]any{"uri": "file:///notes.txt"}, "position": pos(0, 0),
	})
	assert.Nil(t, r.(*protocol.Hover))
}

func openProgram(t *testing.T) *client {
	c := newClient(t)
	c.initialize()
	c.call(protocol.MethodTextDocumentDidOpen, map[string]any{
		"textDocument": map[string]any{
			"uri": uri, "languageId": "", "version": 1,
			"text": "let a = 1;\nfn twice(x) { return x * 2; }\nlet b = twice(a);\n",
		},
	})
	c.notes = nil
	return c
}

func TestQueries(t *testing.T) {
	c := openProgram(t)

	hover := c.call(protocol.MethodTextDocumentHover, at(2, 14)).(*protocol.Hover)
	require.NotNil(t, hover)
	markup := hover.Contents.(protocol.MarkupContent)
	assert.Equal(t, protocol.MarkupKindMarkdown, markup.Kind)
	assert.Contains(t, markup.Value, "LetStmt defined at 1:5")

	def := c.call(protocol.MethodTextDocumentDefinition, at(2, 14)).(protocol.Location)
	assert.Equal(t, uri, def.URI)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 4},
		End:   protocol.Position{Line: 0, Character: 5},
	}, def.Range)

	withDecl := at(1, 9)
	withDecl["context"] = map[string]any{"includeDeclaration": true}
	refs := c.call(protocol.MethodTextDocumentReferences, withDecl).([]protocol.Location)
	assert.Len(t, refs, 2)

	withoutDecl := at(1, 9)
	withoutDecl["context"] = map[string]any{"includeDeclaration": false}
	refs = c.call(protocol.MethodTextDocumentReferences, withoutDecl).([]protocol.Location)
	require.Len(t, refs, 1)
	assert.Equal(t, protocol.UInteger(21), refs[0].Range.Start.Character)

	symbols := c.call(protocol.MethodTextDocumentDocumentSymbol, map[string]any{
		"textDocument": map[string]any{"uri": uri},
	}).([]protocol.DocumentSymbol)
	require.Len(t, symbols, 3)
	assert.Equal(t, "twice", symbols[1].Name)
	assert.Equal(t, protocol.SymbolKindFunction, symbols[1].Kind)
	assert.Equal(t, protocol.SymbolKindVariable, symbols[2].Kind)

	items := c.call(protocol.MethodTextDocumentCompletion, at(2, 10)).([]protocol.CompletionItem)
	labels := map[string]protocol.CompletionItemKind{}
	for _, item := range items {
		labels[item.Label] = *item.Kind
	}
	assert.Equal(t, protocol.CompletionItemKindText, labels["twice"])
	assert.NotContains(t, labels, "let")
}

func TestRename(t *testing.T) {
	c := openProgram(t)

	edit := c.call(protocol.MethodTextDocumentRename, map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     pos(0, 4),
		"newName":      "alpha",
	}).(*protocol.WorkspaceEdit)
	require.NotNil(t, edit)
	edits := edit.Changes[uri]
	require.Len(t, edits, 2)
	for _, e := range edits {
		assert.Equal(t, "alpha", e.NewText)
	}

	_, _, _, err := c.send(protocol.MethodTextDocumentRename, map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     pos(0, 4),
		"newName":      "",
	})
	assert.Error(t, err)
}

func TestUnknownMethod(t *testing.T) {
	c := newClient(t)
	c.initialize()

	_, validMethod, _, _ := c.send("textDocument/formatting", map[string]any{})
	assert.False(t, validMethod)
}

func TestExitCodes(t *testing.T) {
	c := newClient(t)
	c.initialize()
	c.call(protocol.MethodShutdown, nil)
	c.call(protocol.MethodExit, nil)
	assert.Equal(t, []int{0}, c.exits)

	c = newClient(t)
	c.initialize()
	c.call(protocol.MethodExit, nil)
	assert.Equal(t, []int{1}, c.exits)
}

func TestRunStdioSurvivesMalformedFrames(t *testing.T) {
	frame := func(body string) string {
		return "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	}
	bad := []string{
		"Content-Length: nope\r\n\r\n{}",
		frame(`{}`),
		frame(`[1,2]`),
		frame(`{"jsonrpc":"2.0","id":{},"method":"x"}`),
	}
	for _, b := range bad {
		c := newClient(t)
		input := frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"capabilities":{}}}`) +
			b +
			frame(`{"jsonrpc":"2.0","id":3,"method":"oak/unknown"}`) +
			frame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`)

		var out bytes.Buffer
		require.NoError(t, c.server.RunStdio(strings.NewReader(input), &out))
		assert.Contains(t, out.String(), `"id":1`, b)
		assert.Contains(t, out.String(), `"id":2`, b)
		assert.Contains(t, out.String(), `-32601`, b)
	}
}

func TestServeTCP(t *testing.T) {
	c := newClient(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	go c.server.Serve(l)

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	frame := func(body string) string {
		return "Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body
	}
	_, err = io.WriteString(conn,
		frame(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"capabilities":{}}}`)+
			frame(`{}`)+
			frame(`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	for _, want := range []string{`"id":1`, `"id":2`} {
		body := readFrame(t, r)
		assert.Contains(t, body, want)
	}
}

func readFrame(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	length := -1
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			length, err = strconv.Atoi(v)
			require.NoError(t, err)
		}
	}
	require.Positive(t, length)
	body := make([]byte, length)
	_, err := io.ReadFull(r, body)
	require.NoError(t, err)
	return string(body)
}

type httpReply struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Notifications []struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	} `json:"notifications"`
}

func post(t *testing.T, url, body string) httpReply {
	t.Helper()
	resp, err := http.Post(url+"/rpc", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reply httpReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	return reply
}

func TestHTTPAdapter(t *testing.T) {
	c := newClient(t)
	srv := httptest.NewServer(c.server.HTTPHandler())
	defer srv.Close()

	reply := post(t, srv.URL, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"capabilities":{}}}`)
	require.Nil(t, reply.Error)
	assert.JSONEq(t, `1`, string(reply.ID))
	assert.Contains(t, string(reply.Result), `"oak-test"`)

	reply = post(t, srv.URL, `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.json","languageId":"json","version":1,"text":"{\"a\": }"}}}`)
	require.Nil(t, reply.Error)
	assert.Empty(t, reply.ID)
	require.Len(t, reply.Notifications, 1)
	assert.Equal(t, "textDocument/publishDiagnostics", reply.Notifications[0].Method)
	var published protocol.PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(reply.Notifications[0].Params, &published))
	assert.Len(t, published.Diagnostics, 1)

	reply = post(t, srv.URL, `{"jsonrpc":"2.0","id":"h","method":"textDocument/hover","params":{"textDocument":{"uri":"file:///a.json"},"position":{"line":0,"character":1}}}`)
	require.Nil(t, reply.Error)
	assert.Contains(t, string(reply.Result), "String")

	reply = post(t, srv.URL, `{"jsonrpc":"2.0","id":2,"method":"workspace/bogus"}`)
	require.NotNil(t, reply.Error)
	assert.Equal(t, -32601, reply.Error.Code)

	reply = post(t, srv.URL, `{"jsonrpc":`)
	require.NotNil(t, reply.Error)
	assert.Equal(t, -32700, reply.Error.Code)

	reply = post(t, srv.URL, `{"id":3,"method":"initialize"}`)
	require.NotNil(t, reply.Error)
	assert.Equal(t, -32600, reply.Error.Code)

	resp, err := http.Get(srv.URL + "/rpc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
