package handler

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func pos(line, char uint32) protocol.Position {
	return protocol.Position{Line: line, Character: char}
}

// --- wordAtPosition ----------------------------------------------------------

func TestWordAtPosition_StartOfWord(t *testing.T) {
	got := wordAtPosition("req.url = \"/\"", pos(0, 0))
	if got != "req.url" {
		t.Errorf("want 'req.url', got %q", got)
	}
}

func TestWordAtPosition_MidWord(t *testing.T) {
	got := wordAtPosition("req.url = \"/\"", pos(0, 2))
	if got != "req.url" {
		t.Errorf("want 'req.url', got %q", got)
	}
}

func TestWordAtPosition_EndOfWord(t *testing.T) {
	got := wordAtPosition("req.url = \"/\"", pos(0, 7))
	if got != "req.url" {
		t.Errorf("want 'req.url', got %q", got)
	}
}

func TestWordAtPosition_SecondWord(t *testing.T) {
	got := wordAtPosition("set req.url = req.url", pos(0, 20))
	if got != "req.url" {
		t.Errorf("want 'req.url', got %q", got)
	}
}

func TestWordAtPosition_InWhitespace(t *testing.T) {
	got := wordAtPosition("set  req.url", pos(0, 4))
	if got != "" {
		t.Errorf("cursor in whitespace: want empty string, got %q", got)
	}
}

func TestWordAtPosition_SecondLine(t *testing.T) {
	content := "sub vcl_recv {\n    set req.url = \"/\";\n}"
	got := wordAtPosition(content, pos(1, 8))
	if got != "req.url" {
		t.Errorf("want 'req.url', got %q", got)
	}
}

func TestWordAtPosition_LineOutOfBounds(t *testing.T) {
	got := wordAtPosition("req.url", pos(5, 0))
	if got != "" {
		t.Errorf("out-of-bounds line: want empty string, got %q", got)
	}
}

func TestWordAtPosition_EmptyContent(t *testing.T) {
	got := wordAtPosition("", pos(0, 0))
	if got != "" {
		t.Errorf("empty content: want empty string, got %q", got)
	}
}

func TestWordAtPosition_CharPastEndOfLine(t *testing.T) {
	got := wordAtPosition("client.ip", pos(0, 100))
	if got != "client.ip" {
		t.Errorf("char past end of line: want 'client.ip', got %q", got)
	}
}

// --- lookupDoc -----------------------------------------------------------

func TestLookupDoc_ExactVariableMatch(t *testing.T) {
	if _, ok := lookupDoc("req.url"); !ok {
		t.Error("expected req.url to have hover docs")
	}
}

func TestLookupDoc_FallsBackToNamespaceRoot(t *testing.T) {
	doc, ok := lookupDoc("req.http.Host")
	if !ok {
		t.Fatal("expected req.http.Host to resolve via its req.http ancestor")
	}
	if doc != variableDocs["req.http"] {
		t.Errorf("expected the req.http doc, got %q", doc)
	}
}

func TestLookupDoc_StdlibModulePrefix(t *testing.T) {
	if _, ok := lookupDoc("std.tolower"); !ok {
		t.Error("expected std.tolower to resolve via the std module doc")
	}
}

func TestLookupDoc_UnknownWordHasNoDoc(t *testing.T) {
	if _, ok := lookupDoc("not_a_real_thing"); ok {
		t.Error("expected no hover doc for an unrecognized word")
	}
}
