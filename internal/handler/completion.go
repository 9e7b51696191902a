package handler

import (
	"sort"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// stdlibPrefixes is the §6.2 module-dispatch table: the qualified-name
// prefixes a function call may be routed through.
var stdlibPrefixes = []string{
	"std", "digest", "math", "table", "header", "time", "querystring",
	"uuid", "addr", "accept", "bin", "ratelimit", "setcookie", "fastly",
	"h2", "h3",
}

// phaseSubroutines are the well-known names a "sub" declaration can give
// the compiler a place to hook into (§4.1).
var phaseSubroutines = []string{
	"vcl_recv", "vcl_hash", "vcl_hit", "vcl_miss", "vcl_pass",
	"vcl_fetch", "vcl_deliver", "vcl_error", "vcl_pipe", "vcl_init", "vcl_synth",
}

// statementKeywords starts a statement inside a subroutine body (§3.3).
var statementKeywords = []string{
	"set", "unset", "remove", "add", "declare", "if", "elsif", "elseif", "else",
	"return", "restart", "goto", "call", "switch", "case", "default", "break",
	"log", "synthetic", "error", "esi",
}

// declKeywords starts a new top-level declaration (§3.2).
var declKeywords = []string{
	"vcl", "import", "include", "sub", "acl", "backend", "director",
	"table", "penaltybox", "ratecounter",
}

// namespacePrefixes are the dotted-path roots resolvable by
// internal/interp.ResolveIdentifier (§4.3).
var namespacePrefixes = []string{
	"req", "bereq", "beresp", "resp", "obj", "client", "server",
	"now", "math", "fastly", "fastly_info", "time", "tls", "waf", "workspace", "var",
}

// Completion handles textDocument/completion with context-sensitive
// suggestions: a stdlib module's functions after "module.", the dotted
// namespaces and stdlib module names after a bare ".", and keywords /
// phase-subroutine names / declaration keywords at the start of a token.
func (h *Handler) Completion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	empty := []protocol.CompletionItem{}

	content, ok := h.store.Get(string(params.TextDocument.URI))
	if !ok {
		return empty, nil
	}

	prefix, dotted := wordBeforeCursor(content, params.Position)
	if dotted != "" {
		if fns, ok := stdlibFunctions[dotted]; ok {
			return functionItems(fns, prefix), nil
		}
		return empty, nil
	}

	var items []protocol.CompletionItem
	items = append(items, keywordItems(declKeywords)...)
	items = append(items, keywordItems(statementKeywords)...)
	items = append(items, moduleItems(phaseSubroutines, protocol.CompletionItemKindFunction)...)
	items = append(items, moduleItems(stdlibPrefixes, protocol.CompletionItemKindModule)...)
	items = append(items, moduleItems(namespacePrefixes, protocol.CompletionItemKindVariable)...)

	return filterByPrefix(items, prefix), nil
}

// wordBeforeCursor returns the identifier fragment immediately left of the
// cursor, and, if that fragment contains a dot, the dotted prefix before
// the final segment (e.g. "std.log" at the cursor → prefix "log", dotted
// "std").
func wordBeforeCursor(content string, pos protocol.Position) (prefix, dotted string) {
	lines := strings.Split(content, "\n")
	if int(pos.Line) >= len(lines) {
		return "", ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	start := col
	for start > 0 && isWordOrDot(rune(line[start-1])) {
		start--
	}
	word := line[start:col]
	if i := strings.LastIndexByte(word, '.'); i >= 0 {
		return word[i+1:], word[:i]
	}
	return word, ""
}

func isWordOrDot(r rune) bool {
	return r == '.' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func keywordItems(names []string) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindKeyword
	items := make([]protocol.CompletionItem, 0, len(names))
	for _, n := range names {
		items = append(items, protocol.CompletionItem{Label: n, Kind: &kind})
	}
	return items
}

func moduleItems(names []string, kind protocol.CompletionItemKind) []protocol.CompletionItem {
	k := kind
	items := make([]protocol.CompletionItem, 0, len(names))
	for _, n := range names {
		items = append(items, protocol.CompletionItem{Label: n, Kind: &k})
	}
	return items
}

func functionItems(names []string, prefix string) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindFunction
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	items := make([]protocol.CompletionItem, 0, len(sorted))
	for _, n := range sorted {
		if strings.HasPrefix(n, prefix) {
			items = append(items, protocol.CompletionItem{Label: n, Kind: &kind})
		}
	}
	return items
}

func filterByPrefix(items []protocol.CompletionItem, prefix string) []protocol.CompletionItem {
	if prefix == "" {
		return items
	}
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(it.Label, prefix) {
			out = append(out, it)
		}
	}
	return out
}
