package syntax

import (
	"testing"

	"vclcore/internal/ast"
)

func TestParseVersionPragma(t *testing.T) {
	prog, diags := Parse(`vcl 4.1;
sub vcl_recv {
	return (lookup);
}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	if prog.Version != "4.1" {
		t.Errorf("got version %q, want 4.1", prog.Version)
	}
}

func TestParseMissingVersionPragmaProducesProgramWithEmptyVersion(t *testing.T) {
	prog, _ := Parse(`sub vcl_recv {
	return (lookup);
}`)
	if prog.Version != "" {
		t.Errorf("expected empty Version when the pragma is absent, got %q", prog.Version)
	}
}

func TestParseSubroutineNameAndBody(t *testing.T) {
	prog, diags := Parse(`vcl 4.1;
sub vcl_recv {
	set req.http.X-Test = "1";
	return (lookup);
}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	if len(prog.Subroutines) != 1 {
		t.Fatalf("expected 1 subroutine, got %d", len(prog.Subroutines))
	}
	sub := prog.Subroutines[0]
	if sub.Name != "vcl_recv" {
		t.Errorf("got subroutine name %q, want vcl_recv", sub.Name)
	}
	if len(sub.Body) != 2 {
		t.Fatalf("expected 2 statements in the body, got %d", len(sub.Body))
	}
	set, ok := sub.Body[0].(*ast.SetStatement)
	if !ok {
		t.Fatalf("expected first statement to be a SetStatement, got %T", sub.Body[0])
	}
	if set.Target != "req.http.X-Test" {
		t.Errorf("got set target %q, want req.http.X-Test", set.Target)
	}
	ret, ok := sub.Body[1].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected second statement to be a ReturnStatement, got %T", sub.Body[1])
	}
	if ret.Action != "lookup" {
		t.Errorf("got return action %q, want lookup", ret.Action)
	}
}

func TestParseIfElsif(t *testing.T) {
	prog, diags := Parse(`vcl 4.1;
sub vcl_recv {
	if (req.url ~ "^/api/") {
		set req.http.X-API = "1";
	} elsif (req.url ~ "^/static/") {
		set req.http.X-Static = "1";
	} else {
		set req.http.X-Other = "1";
	}
}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	ifs, ok := prog.Subroutines[0].Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected an IfStatement, got %T", prog.Subroutines[0].Body[0])
	}
	if len(ifs.Consequent) != 1 {
		t.Errorf("expected 1 statement in the if-branch, got %d", len(ifs.Consequent))
	}
	if len(ifs.Alternate) != 1 {
		t.Fatalf("expected the elsif to desugar into a single nested statement in Alternate, got %d", len(ifs.Alternate))
	}
	if _, ok := ifs.Alternate[0].(*ast.IfStatement); !ok {
		t.Errorf("expected elsif to parse as a nested IfStatement, got %T", ifs.Alternate[0])
	}
}

func TestParseDeclareLocal(t *testing.T) {
	prog, diags := Parse(`vcl 4.1;
sub vcl_recv {
	declare local var.count INTEGER;
}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	decl, ok := prog.Subroutines[0].Body[0].(*ast.DeclareStatement)
	if !ok {
		t.Fatalf("expected a DeclareStatement, got %T", prog.Subroutines[0].Body[0])
	}
	if decl.Name != "count" || decl.Type != "INTEGER" {
		t.Errorf("got Name=%q Type=%q, want count/INTEGER", decl.Name, decl.Type)
	}
}

func TestParseReportsSyntaxErrorAndRecovers(t *testing.T) {
	prog, diags := Parse(`vcl 4.1;
sub vcl_recv {
	set req.http.X = ;
}
sub vcl_deliver {
	return (deliver);
}`)
	if len(diags) == 0 {
		t.Fatal("expected at least one diagnostic for the malformed set statement")
	}
	names := make([]string, 0, len(prog.Subroutines))
	for _, s := range prog.Subroutines {
		names = append(names, s.Name)
	}
	found := false
	for _, n := range names {
		if n == "vcl_deliver" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the parser to recover and still parse vcl_deliver, got subroutines %v", names)
	}
}

func TestParseACLDecl(t *testing.T) {
	prog, diags := Parse(`vcl 4.1;
acl internal {
	"192.168.0.0"/16;
	!"192.168.1.1";
}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	if len(prog.ACLs) != 1 {
		t.Fatalf("expected 1 ACL decl, got %d", len(prog.ACLs))
	}
	acl := prog.ACLs[0]
	if acl.Name != "internal" {
		t.Errorf("got ACL name %q, want internal", acl.Name)
	}
	if len(acl.Entries) != 2 {
		t.Fatalf("expected 2 ACL entries, got %d", len(acl.Entries))
	}
	if acl.Entries[0].Prefix == nil || *acl.Entries[0].Prefix != 16 {
		t.Errorf("expected the first entry's prefix to be 16")
	}
	if !acl.Entries[1].Negated {
		t.Error("expected the second entry to be negated")
	}
}

func TestParseSwitch(t *testing.T) {
	prog, diags := Parse(`vcl 4.1;
sub vcl_recv {
	switch (req.http.X-Env) {
	case "prod":
		set req.http.X-Tier = "1";
	case "staging":
		set req.http.X-Tier = "2";
	default:
		set req.http.X-Tier = "0";
	}
}`)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	sw, ok := prog.Subroutines[0].Body[0].(*ast.SwitchStatement)
	if !ok {
		t.Fatalf("expected a SwitchStatement, got %T", prog.Subroutines[0].Body[0])
	}
	if len(sw.Cases) != 3 {
		t.Fatalf("expected 3 switch cases (including default), got %d", len(sw.Cases))
	}
}
