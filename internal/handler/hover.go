package handler

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// variableDocs documents the dotted request/response/runtime namespaces a
// VCL program reads and writes (§4.3).
var variableDocs = map[string]string{
	"req":        "**req** — the incoming client request: headers, method, URL, and per-request flags, writable mainly in `vcl_recv`.",
	"req.url":    "**req.url** — the request path and query string. `req.url.path`, `.qs`, `.basename`, `.dirname`, `.ext` read its subfields.",
	"req.method": "**req.method** — the HTTP request method (e.g. `GET`, `POST`).",
	"req.http":   "**req.http.<Name>** — a request header; `set req.http.Host = \"...\"` rewrites it, `unset req.http.Name` removes it.",
	"req.backend": "**req.backend** — the backend or director this request will be sent to; assignable to a `backend` or `director` identifier.",
	"req.restarts": "**req.restarts** — how many times `restart` has been invoked for this request so far.",
	"bereq":      "**bereq** — the request as sent to the backend, writable in `vcl_miss`, `vcl_pass`, `vcl_fetch`, and `vcl_pipe`.",
	"bereq.backend": "**bereq.backend** — the backend this fetch is targeting.",
	"beresp":     "**beresp** — the backend's response, writable only in `vcl_fetch`.",
	"beresp.ttl": "**beresp.ttl** — how long this response may be cached, as a time value (`300s`, `5m`, ...).",
	"beresp.status": "**beresp.status** — the backend response's HTTP status code.",
	"resp":       "**resp** — the response sent to the client, writable in `vcl_deliver`, `vcl_error`, and `vcl_synth`.",
	"resp.status": "**resp.status** — the HTTP status code returned to the client.",
	"obj":        "**obj** — the cached object, writable in `vcl_hit` and `vcl_error`.",
	"obj.hits":   "**obj.hits** — how many times this cached object has been served.",
	"client":     "**client** — the connecting client: `client.ip`, `client.geo.*`, `client.as.*`, read-only.",
	"client.ip":  "**client.ip** — the client's IP address, used as the default key for hash/client directors.",
	"server":     "**server** — this server's own identity: `server.hostname`, `server.ip`, `server.datacenter`, read-only.",
	"now":        "**now** — the current time; `now.sec` is Unix seconds, bare `now` is Unix milliseconds.",
	"math":       "**math.PI**, **math.E**, ... — floating-point constants (§6.2 math module).",
	"var":        "**var.<name>** — a subroutine-local variable declared with `declare local var.<name> TYPE;`.",
}

// Hover handles textDocument/hover.
func (h *Handler) Hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)
	content, ok := h.store.Get(uri)
	if !ok {
		return nil, nil
	}

	word := wordAtPosition(content, params.Position)
	if word == "" {
		return nil, nil
	}

	doc, found := lookupDoc(word)
	if !found {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: doc,
		},
	}, nil
}

// lookupDoc resolves hover documentation for word: an exact dotted-variable
// match first (falling back to its namespace root, e.g. "req.http.Host" →
// "req.http" → "req"), then a stdlib module prefix.
func lookupDoc(word string) (string, bool) {
	for candidate := word; candidate != ""; candidate = parentPath(candidate) {
		if doc, ok := variableDocs[candidate]; ok {
			return doc, true
		}
	}
	prefix := word
	if i := strings.IndexByte(word, '.'); i >= 0 {
		prefix = word[:i]
	}
	if _, ok := stdlibFunctions[prefix]; ok {
		return "**" + prefix + ".*** — §6.2 standard-library module: " + strings.Join(stdlibFunctions[prefix], ", "), true
	}
	return "", false
}

func parentPath(dotted string) string {
	i := strings.LastIndexByte(dotted, '.')
	if i < 0 {
		return ""
	}
	return dotted[:i]
}

// wordAtPosition extracts the dotted identifier under the cursor position.
func wordAtPosition(content string, pos protocol.Position) string {
	lines := strings.Split(content, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	runes := []rune(line)
	col := int(pos.Character)
	if col > len(runes) {
		col = len(runes)
	}

	start := col
	for start > 0 && isWordRune(runes[start-1]) {
		start--
	}

	end := col
	for end < len(runes) && isWordRune(runes[end]) {
		end++
	}

	if start == end {
		return ""
	}
	return string(runes[start:end])
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.'
}
