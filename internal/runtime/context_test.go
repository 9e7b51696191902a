package runtime

import (
	"testing"

	"vclcore/internal/value"
)

func TestNewContextInitializesAllMessages(t *testing.T) {
	ctx := NewContext()
	for name, msg := range map[string]*Message{
		"req": ctx.Req, "bereq": ctx.Bereq, "beresp": ctx.Beresp,
		"resp": ctx.Resp, "obj": ctx.Obj,
	} {
		if msg == nil || msg.Http == nil || msg.Fields == nil {
			t.Errorf("expected %s to be a fully initialized Message", name)
		}
	}
}

func TestMessageGetAbsentFieldReturnsEmptyString(t *testing.T) {
	m := NewMessage()
	if got := m.Get("status"); got.AsString() != "" {
		t.Errorf("expected an unset field to read back empty, got %q", got.AsString())
	}
}

func TestMessageSetThenGetRoundTrips(t *testing.T) {
	m := NewMessage()
	m.Set("status", value.Integer(200))
	if got := m.Get("status"); got.AsInt() != 200 {
		t.Errorf("got %d, want 200", got.AsInt())
	}
}

func TestContextMessageDispatchesByNamespace(t *testing.T) {
	ctx := NewContext()
	if ctx.Message("req") != ctx.Req {
		t.Error("expected Message(\"req\") to return ctx.Req")
	}
	if ctx.Message("beresp") != ctx.Beresp {
		t.Error("expected Message(\"beresp\") to return ctx.Beresp")
	}
	if ctx.Message("bogus") != nil {
		t.Error("expected Message to return nil for an unrecognized namespace")
	}
}

func TestResetGroupsClearsCaptureGroupsAndHopCounter(t *testing.T) {
	ctx := NewContext()
	ctx.ReGroups[1] = "match"
	for i := 0; i < 5; i++ {
		ctx.BumpGotoHop()
	}
	ctx.ResetGroups()
	if len(ctx.ReGroups) != 0 {
		t.Error("expected ResetGroups to clear capture groups")
	}
	if !ctx.BumpGotoHop() {
		t.Error("expected the hop counter to have been reset to 0")
	}
}

func TestBumpGotoHopEnforcesLimit(t *testing.T) {
	ctx := NewContext()
	ok := true
	for i := 0; i < MaxGotoHops+1; i++ {
		ok = ctx.BumpGotoHop()
	}
	if ok {
		t.Error("expected BumpGotoHop to report false once MaxGotoHops is exceeded")
	}
}

func TestHeaderMapCaseInsensitiveLookup(t *testing.T) {
	h := NewHeaderMap()
	h.Set("Host", "example.com")
	if got := h.Get("host"); got != "example.com" {
		t.Errorf("expected case-insensitive lookup to find the header, got %q", got)
	}
	if !h.Has("HOST") {
		t.Error("expected Has to be case-insensitive too")
	}
}

func TestHeaderMapAddAppendsWithCommaSeparator(t *testing.T) {
	h := NewHeaderMap()
	h.Set("Vary", "Accept")
	h.Add("Vary", "Accept-Encoding")
	if got := h.Get("Vary"); got != "Accept, Accept-Encoding" {
		t.Errorf("got %q, want comma-separated append", got)
	}
}

func TestHeaderMapAddUsesNewlineForSetCookie(t *testing.T) {
	h := NewHeaderMap()
	h.Set("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	if got := h.Get("Set-Cookie"); got != "a=1\nb=2" {
		t.Errorf("got %q, want newline-separated Set-Cookie entries", got)
	}
}
