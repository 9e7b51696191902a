package handler

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestWordBeforeCursor_BareWord(t *testing.T) {
	prefix, dotted := wordBeforeCursor("su", protocol.Position{Line: 0, Character: 2})
	if prefix != "su" || dotted != "" {
		t.Errorf("got prefix=%q dotted=%q, want prefix=su dotted=\"\"", prefix, dotted)
	}
}

func TestWordBeforeCursor_DottedModuleCall(t *testing.T) {
	prefix, dotted := wordBeforeCursor("std.to", protocol.Position{Line: 0, Character: 6})
	if prefix != "to" || dotted != "std" {
		t.Errorf("got prefix=%q dotted=%q, want prefix=to dotted=std", prefix, dotted)
	}
}

func TestWordBeforeCursor_MidLine(t *testing.T) {
	prefix, dotted := wordBeforeCursor("set req.http.Host = std.to", protocol.Position{Line: 0, Character: 27})
	if prefix != "to" || dotted != "std" {
		t.Errorf("got prefix=%q dotted=%q, want prefix=to dotted=std", prefix, dotted)
	}
}

func TestWordBeforeCursor_LineOutOfBounds(t *testing.T) {
	prefix, dotted := wordBeforeCursor("foo", protocol.Position{Line: 5, Character: 0})
	if prefix != "" || dotted != "" {
		t.Errorf("out-of-bounds line should yield empty prefix/dotted, got %q/%q", prefix, dotted)
	}
}

func TestFunctionItems_FiltersByPrefix(t *testing.T) {
	items := functionItems([]string{"tolower", "toupper", "strlen"}, "to")
	if len(items) != 2 {
		t.Fatalf("expected 2 matches for prefix %q, got %d", "to", len(items))
	}
	for _, it := range items {
		if it.Label != "tolower" && it.Label != "toupper" {
			t.Errorf("unexpected completion item %q", it.Label)
		}
	}
}

func TestFilterByPrefix_EmptyPrefixReturnsAll(t *testing.T) {
	items := keywordItems([]string{"set", "unset", "return"})
	got := filterByPrefix(items, "")
	if len(got) != len(items) {
		t.Errorf("empty prefix should return all items, got %d of %d", len(got), len(items))
	}
}

func TestFilterByPrefix_NarrowsToMatches(t *testing.T) {
	items := keywordItems([]string{"set", "unset", "switch"})
	got := filterByPrefix(items, "se")
	if len(got) != 1 || got[0].Label != "set" {
		t.Errorf("expected only %q to match prefix %q, got %v", "set", "se", got)
	}
}

func TestStdlibFunctions_KnownPrefixesResolve(t *testing.T) {
	for _, prefix := range stdlibPrefixes {
		if prefix == "h2" || prefix == "h3" {
			continue // accept-and-ignore modules per §6.2, no enumerated function list
		}
		if _, ok := stdlibFunctions[prefix]; !ok {
			t.Errorf("stdlib prefix %q has no function list", prefix)
		}
	}
}
