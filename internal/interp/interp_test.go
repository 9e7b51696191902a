package interp_test

import (
	"testing"

	"vclcore/internal/interp"
	"vclcore/internal/syntax"
	"vclcore/internal/value"
)

func compile(t *testing.T, src string) *interp.Compiled {
	t.Helper()
	prog, diags := syntax.Parse(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	return interp.Compile(prog)
}

func TestExecuteRunsExplicitReturnAction(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv {
	return (pass);
}`)
	ctx := c.NewContext()
	if got := interp.Execute(c, "vcl_recv", ctx); got != "pass" {
		t.Errorf("got action %q, want pass", got)
	}
}

func TestExecuteFallsThroughToDefaultAction(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv {
	set req.http.X-Seen = "1";
}`)
	ctx := c.NewContext()
	if got := interp.Execute(c, "vcl_recv", ctx); got != "lookup" {
		t.Errorf("expected falling off the end of vcl_recv to default to lookup, got %q", got)
	}
}

func TestExecuteUnknownPhaseReturnsPhaseDefault(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv {
	return (lookup);
}`)
	ctx := c.NewContext()
	if got := interp.Execute(c, "vcl_deliver", ctx); got != "deliver" {
		t.Errorf("expected an absent vcl_deliver to default to deliver, got %q", got)
	}
}

func TestExecuteSetThenReadBack(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv {
	set req.http.X-Custom = "hello";
	return (lookup);
}`)
	ctx := c.NewContext()
	interp.Execute(c, "vcl_recv", ctx)
	if got := ctx.Req.Http.Get("X-Custom"); got != "hello" {
		t.Errorf("got req.http.X-Custom = %q, want hello", got)
	}
}

func TestExecuteIfElseBranching(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv {
	if (req.http.X-Flag == "yes") {
		return (pass);
	} else {
		return (lookup);
	}
}`)
	ctxYes := c.NewContext()
	ctxYes.Req.Http.Set("X-Flag", "yes")
	if got := interp.Execute(c, "vcl_recv", ctxYes); got != "pass" {
		t.Errorf("got %q for the true branch, want pass", got)
	}

	ctxNo := c.NewContext()
	if got := interp.Execute(c, "vcl_recv", ctxNo); got != "lookup" {
		t.Errorf("got %q for the false branch, want lookup", got)
	}
}

func TestExecuteValueFunctionalSubroutine(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub pick_backend STRING {
	return ("b1");
}`)
	ctx := c.NewContext()
	v, ok := interp.ExecuteValue(c, "pick_backend", ctx)
	if !ok {
		t.Fatal("expected pick_backend to be found")
	}
	if v.AsString() != "b1" {
		t.Errorf("got %q, want b1", v.AsString())
	}
}

func TestExecuteValueUnknownNameReturnsFalse(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv { return (lookup); }`)
	ctx := c.NewContext()
	_, ok := interp.ExecuteValue(c, "does_not_exist", ctx)
	if ok {
		t.Error("expected ok=false for an unknown functional subroutine name")
	}
}

func TestCompileRegistersACLsAndTables(t *testing.T) {
	c := compile(t, `vcl 4.1;
acl trusted {
	"10.0.0.0"/8;
}
table settings {
	"retries": "3",
}
sub vcl_recv {
	return (lookup);
}`)
	if !c.ACLs.Has("trusted") {
		t.Error("expected the trusted ACL to be registered")
	}
	tbl, ok := c.Tables["settings"]
	if !ok {
		t.Fatal("expected the settings table to be registered")
	}
	if got, _ := tbl.Lookup("retries"); got != "3" {
		t.Errorf("got table entry %q, want 3", got)
	}
}

func TestCompileRestartActionSurfacesAsIs(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv {
	restart;
}`)
	ctx := c.NewContext()
	if got := interp.Execute(c, "vcl_recv", ctx); got != "restart" {
		t.Errorf("got %q, want restart", got)
	}
}

func TestSetBerespTTLIsReadableAfterAssignment(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_fetch {
	set beresp.ttl = 300;
	return (deliver);
}`)
	ctx := c.NewContext()
	interp.Execute(c, "vcl_fetch", ctx)
	if got := ctx.Beresp.Get("ttl"); got.AsInt() != 300 {
		t.Errorf("got beresp.ttl = %d, want 300", got.AsInt())
	}
}

func TestParseSecondsDecodesTableTTLStrings(t *testing.T) {
	// the ms|s|m|h|d suffix grammar of §6.5 is also used by raw
	// table/ratecounter string values, decoded by internal/stdlib via
	// value.ParseSeconds.
	if got := value.ParseSeconds("5m"); got != 300 {
		t.Errorf("ParseSeconds(\"5m\") = %d, want 300", got)
	}
}

func TestSetBerespTTLScalesUnitSuffix(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_fetch {
	set beresp.ttl = 24h;
	set beresp.grace = 5m;
	set beresp.stale_while_revalidate = 30s;
	return (deliver);
}`)
	ctx := c.NewContext()
	interp.Execute(c, "vcl_fetch", ctx)
	if got := ctx.Beresp.Get("ttl").AsInt(); got != 86400 {
		t.Errorf("got beresp.ttl = %d, want 86400", got)
	}
	if got := ctx.Beresp.Get("grace").AsInt(); got != 300 {
		t.Errorf("got beresp.grace = %d, want 300", got)
	}
	if got := ctx.Beresp.Get("stale_while_revalidate").AsInt(); got != 30 {
		t.Errorf("got beresp.stale_while_revalidate = %d, want 30", got)
	}
}

func TestSetObjTTLScalesUnitSuffix(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_hit {
	set obj.ttl = 1h;
	set obj.grace = 10s;
	return (deliver);
}`)
	ctx := c.NewContext()
	interp.Execute(c, "vcl_hit", ctx)
	if got := ctx.Obj.Get("ttl").AsInt(); got != 3600 {
		t.Errorf("got obj.ttl = %d, want 3600", got)
	}
	if got := ctx.Obj.Get("grace").AsInt(); got != 10 {
		t.Errorf("got obj.grace = %d, want 10", got)
	}
}

func TestVclHitDefaultActionIsFetch(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_hit {
	set req.http.X-Seen = "1";
}`)
	ctx := c.NewContext()
	if got := interp.Execute(c, "vcl_hit", ctx); got != "fetch" {
		t.Errorf("expected falling off the end of vcl_hit to default to fetch, got %q", got)
	}
}

func TestSetReqBackendUpdatesCurrentBackendWhenRegistered(t *testing.T) {
	c := compile(t, `vcl 4.1;
backend b1 {
	.host = "127.0.0.1";
	.port = "8080";
}
sub vcl_recv {
	set req.backend = b1;
	return (pass);
}`)
	ctx := c.NewContext()
	interp.Execute(c, "vcl_recv", ctx)
	if ctx.CurrentBackend != "b1" {
		t.Errorf("got ctx.CurrentBackend = %q, want b1", ctx.CurrentBackend)
	}
	if got := ctx.Req.Get("backend").AsString(); got != "b1" {
		t.Errorf("got req.backend = %q, want b1", got)
	}
}

func TestSetReqBackendLeavesCurrentBackendUnsetWhenUnregistered(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_recv {
	set req.backend = "unknown";
	return (pass);
}`)
	ctx := c.NewContext()
	interp.Execute(c, "vcl_recv", ctx)
	if ctx.CurrentBackend != "" {
		t.Errorf("expected ctx.CurrentBackend to stay unset, got %q", ctx.CurrentBackend)
	}
}

func TestSetBerespDoEsiMirrorsIntoRespHeader(t *testing.T) {
	c := compile(t, `vcl 4.1;
sub vcl_fetch {
	set beresp.do_esi = true;
	return (deliver);
}`)
	ctx := c.NewContext()
	interp.Execute(c, "vcl_fetch", ctx)
	if got := ctx.Beresp.Get("do_esi"); !got.Truthy() {
		t.Error("expected beresp.do_esi to be truthy")
	}
	if got := ctx.Resp.Http.Get("X-ESI"); got != "true" {
		t.Errorf("got resp.http.X-ESI = %q, want true", got)
	}
}
