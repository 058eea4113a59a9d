package lsp

import (
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/oak/diag"
	"github.com/dhamidi/oak/lang"
	"github.com/dhamidi/oak/source"
)

func toPosition(text *source.Text, offset int) protocol.Position {
	p := text.OffsetToPosition(offset)
	return protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(p.Character)}
}

func toRange(text *source.Text, span source.Span) protocol.Range {
	return protocol.Range{Start: toPosition(text, span.Start), End: toPosition(text, span.End)}
}

func toOffset(text *source.Text, pos protocol.Position) int {
	return text.PositionToOffset(source.Position{Line: int(pos.Line), Character: int(pos.Character)})
}

func toSpan(text *source.Text, r protocol.Range) source.Span {
	start, end := toOffset(text, r.Start), toOffset(text, r.End)
	if end < start {
		start, end = end, start
	}
	return source.Span{Start: start, End: end}
}

// diagnosticSpan covers the character a diagnostic points at, or nothing at
// a line end or the end of input.
func diagnosticSpan(text *source.Text, d *diag.Error) source.Span {
	span := source.Span{Start: d.Offset, End: d.Offset}
	if r, ok := text.CharAt(d.Offset); ok && r != '\n' && r != '\r' {
		span.End += utf8.RuneLen(r)
	}
	return span
}

func toDiagnostics(text *source.Text, name string, diags []*diag.Error) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	severity := protocol.DiagnosticSeverityError
	for _, d := range diags {
		code := protocol.IntegerOrString{Value: d.Kind.String()}
		out = append(out, protocol.Diagnostic{
			Range:    toRange(text, diagnosticSpan(text, d)),
			Severity: &severity,
			Code:     &code,
			Source:   &name,
			Message:  d.Message,
		})
	}
	return out
}

func toSymbols(text *source.Text, symbols []lang.Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, sym := range symbols {
		detail := sym.Kind
		out = append(out, protocol.DocumentSymbol{
			Name:           sym.Name,
			Detail:         &detail,
			Kind:           symbolKind(sym.Kind),
			Range:          toRange(text, sym.Span),
			SelectionRange: toRange(text, sym.NameSpan),
			Children:       toSymbols(text, sym.Children),
		})
	}
	return out
}

// symbolKind guesses an editor symbol kind from an element kind name.
func symbolKind(kind string) protocol.SymbolKind {
	k := strings.ToLower(kind)
	switch {
	case strings.HasPrefix(k, "fn"), strings.Contains(k, "func"):
		return protocol.SymbolKindFunction
	case strings.Contains(k, "entry"), strings.Contains(k, "property"), strings.Contains(k, "field"):
		return protocol.SymbolKindProperty
	case strings.Contains(k, "class"), strings.Contains(k, "type"), strings.Contains(k, "struct"):
		return protocol.SymbolKindClass
	}
	return protocol.SymbolKindVariable
}

func toCompletionItems(completions []lang.Completion) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(completions))
	for _, c := range completions {
		kind := protocol.CompletionItemKindText
		if c.Keyword {
			kind = protocol.CompletionItemKindKeyword
		}
		items = append(items, protocol.CompletionItem{Label: c.Label, Kind: &kind})
	}
	return items
}
