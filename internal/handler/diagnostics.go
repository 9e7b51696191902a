package handler

import (
	"strconv"
	"strings"

	"vclcore/internal/analysis"
	"vclcore/internal/syntax"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const version = "0.1.0"

// Analyze parses and analyzes content, then publishes diagnostics for uri.
func (h *Handler) Analyze(ctx *glsp.Context, uri, content string) {
	prog, parseDiags := syntax.Parse(content)

	diags := []protocol.Diagnostic{}

	for _, msg := range parseDiags {
		line, col, text := splitParseDiagnostic(msg)
		severity := protocol.DiagnosticSeverityError
		diags = append(diags, protocol.Diagnostic{
			Range:    protocol.Range{Start: protocol.Position{Line: line, Character: col}, End: protocol.Position{Line: line, Character: col + 1}},
			Severity: &severity,
			Source:   strPtr("vcl-ls"),
			Message:  text,
		})
	}

	for _, d := range analysis.Analyze(prog) {
		diags = append(diags, toProtocolDiagnostic(d))
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

func toProtocolDiagnostic(d analysis.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityWarning
	if d.Severity == analysis.SeverityError {
		severity = protocol.DiagnosticSeverityError
	}
	line := uint32(0)
	if d.Pos.Line > 0 {
		line = uint32(d.Pos.Line - 1)
	}
	col := uint32(0)
	if d.Pos.Col > 0 {
		col = uint32(d.Pos.Col - 1)
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: protocol.Position{Line: line, Character: col}, End: protocol.Position{Line: line, Character: col + 1}},
		Severity: &severity,
		Source:   strPtr("vcl-ls"),
		Message:  d.Message,
	}
}

// splitParseDiagnostic unpacks the "line:col: message" format errorf in
// internal/syntax produces, falling back to position 0:0 if it doesn't
// match (it always should, but a diagnostic display shouldn't panic).
func splitParseDiagnostic(msg string) (line, col uint32, text string) {
	first := strings.IndexByte(msg, ':')
	if first < 0 {
		return 0, 0, msg
	}
	second := strings.IndexByte(msg[first+1:], ':')
	if second < 0 {
		return 0, 0, msg
	}
	second += first + 1
	l, err1 := strconv.Atoi(msg[:first])
	c, err2 := strconv.Atoi(msg[first+1 : second])
	if err1 != nil || err2 != nil {
		return 0, 0, msg
	}
	text = strings.TrimPrefix(msg[second+1:], " ")
	if l > 0 {
		l--
	}
	if c > 0 {
		c--
	}
	return uint32(l), uint32(c), text
}

func strPtr(s string) *string { return &s }
