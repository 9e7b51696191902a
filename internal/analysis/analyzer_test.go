package analysis

import (
	"strings"
	"testing"

	"vclcore/internal/syntax"
)

func analyzeSource(t *testing.T, src string) []Diagnostic {
	t.Helper()
	prog, parseDiags := syntax.Parse(src)
	if len(parseDiags) > 0 {
		t.Fatalf("unexpected parse diagnostics: %v", parseDiags)
	}
	return Analyze(prog)
}

func containsMessage(diags []Diagnostic, substr string) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidVCL41RoundTrip(t *testing.T) {
	diags := analyzeSource(t, `
vcl 4.1;

sub vcl_recv {
    set req.url = "/test";
    return (lookup);
}

sub vcl_hash {
    return (hash);
}

sub vcl_backend_response {
    set beresp.ttl = 300s;
    return (deliver);
}
`)
	if len(diags) > 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestMissingVersionPragma(t *testing.T) {
	diags := analyzeSource(t, `
sub vcl_recv {
    set req.url = "/test";
    return (hash);
}
`)
	if !containsMessage(diags, "must start with version") {
		t.Errorf("expected a missing-version diagnostic, got %v", diags)
	}
}

func TestReturnActionNotAllowed(t *testing.T) {
	diags := analyzeSource(t, `
vcl 4.1;

sub vcl_recv {
    return (deliver);
}

sub vcl_hash {
    return (pass);
}
`)
	if !containsMessage(diags, "return action 'deliver' is not allowed") {
		t.Errorf("expected deliver to be rejected in vcl_recv, got %v", diags)
	}
	if !containsMessage(diags, "return action 'pass' is not allowed") {
		t.Errorf("expected pass to be rejected in vcl_hash, got %v", diags)
	}
}

func TestVariableAccessRejectsWrongNamespace(t *testing.T) {
	diags := analyzeSource(t, `
vcl 4.1;

sub vcl_recv {
    set beresp.status = 200;
    return (hash);
}
`)
	if !containsMessage(diags, "cannot be writed") {
		t.Errorf("expected beresp.status write to be rejected in vcl_recv, got %v", diags)
	}
}

func TestFieldRequiresVCL41(t *testing.T) {
	diags := analyzeSource(t, `
vcl 4.0;

sub vcl_backend_response {
    set beresp.proto = "HTTP/1.1";
    return (deliver);
}
`)
	if !containsMessage(diags, "requires VCL version 4.1") {
		t.Errorf("expected a version-gated diagnostic, got %v", diags)
	}
}

func TestFieldRemovedInVCL41(t *testing.T) {
	diags := analyzeSource(t, `
vcl 4.1;

sub vcl_recv {
    set req.esi = true;
    return (hash);
}
`)
	if !containsMessage(diags, "not available in VCL version 4.1") {
		t.Errorf("expected req.esi to be flagged in VCL 4.1, got %v", diags)
	}
}

func TestUserDefinedSubroutinesAreUnconstrained(t *testing.T) {
	diags := analyzeSource(t, `
vcl 4.1;

sub custom_logic {
    set beresp.status = 500;
    return (deliver);
}
`)
	if len(diags) > 0 {
		t.Errorf("expected user-defined subs to skip phase checks, got %v", diags)
	}
}

func TestNestedIfIsWalked(t *testing.T) {
	diags := analyzeSource(t, `
vcl 4.1;

sub vcl_recv {
    if (req.url ~ "^/admin") {
        set beresp.ttl = 0s;
    }
    return (hash);
}
`)
	if !containsMessage(diags, "cannot be writed") {
		t.Errorf("expected the nested set inside the if-branch to be checked, got %v", diags)
	}
}
