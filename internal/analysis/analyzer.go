// Package analysis implements the validators a production VCL toolchain
// runs ahead of compilation: which return actions a phase subroutine may
// terminate with, and which request/response namespaces it may write
// (reads are not checked). It finds the same class of defect perbu/vclparser's
// NewReturnActionValidator / NewVariableAccessValidator / NewVersionValidator
// do, reported as the same kind of "not allowed in this context" message.
package analysis

import (
	"fmt"

	"vclcore/internal/ast"
)

// Severity mirrors the two levels the driver/LSP front end need; it stays
// independent of any particular protocol so both cmd/vclrun and cmd/vcl-ls
// can consume it.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Diagnostic is one analysis finding, anchored at a source position.
type Diagnostic struct {
	Pos      ast.Pos
	Severity Severity
	Message  string
}

// KnownActions is the canonical action vocabulary of §6.3.
var KnownActions = map[string]bool{
	"lookup": true, "pass": true, "fetch": true, "deliver": true,
	"hash": true, "error": true, "restart": true, "pipe": true,
	"hit_for_pass": true, "deliver_stale": true, "ok": true,
}

// allowedActions lists the return actions a well-known phase subroutine may
// terminate with (§6.3/§6.4's phase/action pairing, as Fastly's own VCL
// reference documents it). A phase not listed here is user-defined and is
// not checked for action vocabulary at all.
var allowedActions = map[string]map[string]bool{
	"vcl_recv":    {"lookup": true, "pass": true, "error": true, "restart": true, "pipe": true},
	"vcl_hash":    {"hash": true},
	"vcl_hit":     {"deliver": true, "pass": true, "error": true, "restart": true, "deliver_stale": true},
	"vcl_miss":    {"fetch": true, "deliver_stale": true, "error": true, "pass": true},
	"vcl_pass":    {"fetch": true, "error": true},
	"vcl_fetch":   {"deliver": true, "pass": true, "error": true, "restart": true, "deliver_stale": true, "hit_for_pass": true},
	"vcl_deliver": {"deliver": true, "restart": true},
	"vcl_error":   {"deliver": true, "restart": true},
	"vcl_pipe":    {"pipe": true, "error": true},
	"vcl_init":    {"ok": true},
	"vcl_synth":   {"deliver": true},
}

// writableNamespaces lists which of req/bereq/beresp/resp/obj a phase may
// set fields on. A namespace absent from a phase's set is read-only there;
// "var" and bare locals are always writable and are not modeled here.
var writableNamespaces = map[string]map[string]bool{
	"vcl_recv":    {"req": true},
	"vcl_hash":    {"req": true},
	"vcl_hit":     {"req": true, "obj": true},
	"vcl_miss":    {"req": true, "bereq": true},
	"vcl_pass":    {"req": true, "bereq": true},
	"vcl_fetch":   {"bereq": true, "beresp": true},
	"vcl_deliver": {"req": true, "resp": true},
	"vcl_error":   {"req": true, "resp": true, "obj": true},
	"vcl_pipe":    {"req": true, "bereq": true},
	"vcl_init":    {},
	"vcl_synth":   {"req": true, "resp": true},
}

// requiresVCL41 lists dotted fields introduced in VCL 4.1 that a "vcl 4.0;"
// document may not set.
var requiresVCL41 = map[string]bool{
	"beresp.proto": true,
	"req.proto":    true,
	"bereq.proto":  true,
}

// removedInVCL41 lists dotted fields that were retired going into 4.1; a
// "vcl 4.1;" document setting one of these gets flagged even though the
// namespace/phase pairing is otherwise legal.
var removedInVCL41 = map[string]bool{
	"req.esi": true,
}

// Analyze runs every validator against prog and returns their findings.
// Subroutines whose name isn't one of §4.1's well-known phases are
// user-defined: their return actions and variable access are unconstrained
// (they communicate through locals.__return_value__ or by being called from
// a phase sub that is itself checked), so they are skipped here.
func Analyze(prog *ast.Program) []Diagnostic {
	var diags []Diagnostic
	diags = append(diags, checkVersion(prog)...)
	for _, sub := range prog.Subroutines {
		diags = append(diags, checkFieldVersions(prog.Version, sub.Body)...)
		rules, known := allowedActions[sub.Name]
		if !known {
			continue
		}
		diags = append(diags, checkReturnActions(sub.Name, rules, sub.Body)...)
		diags = append(diags, checkVariableAccess(sub.Name, writableNamespaces[sub.Name], sub.Body)...)
	}
	return diags
}

// checkVersion requires every document to open with a "vcl VERSION;" pragma.
func checkVersion(prog *ast.Program) []Diagnostic {
	if prog.Version == "" {
		return []Diagnostic{{
			Severity: SeverityError,
			Message:  "VCL input must start with version declaration (vcl 4.1;)",
		}}
	}
	return nil
}

// checkFieldVersions flags fields gated to a VCL version other than the one
// this document declared.
func checkFieldVersions(version string, body []ast.Statement) []Diagnostic {
	var diags []Diagnostic
	walkStatements(body, func(s ast.Statement) {
		set, ok := s.(*ast.SetStatement)
		if !ok {
			return
		}
		if requiresVCL41[set.Target] && version != "4.1" {
			diags = append(diags, Diagnostic{
				Pos:      set.At(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s requires VCL version 4.1", set.Target),
			})
		}
		if removedInVCL41[set.Target] && version == "4.1" {
			diags = append(diags, Diagnostic{
				Pos:      set.At(),
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s is not available in VCL version 4.1", set.Target),
			})
		}
	})
	return diags
}

// checkReturnActions walks every return(...) statement reachable from body
// and flags one whose action isn't in rules, or isn't part of the canonical
// vocabulary at all.
func checkReturnActions(phase string, rules map[string]bool, body []ast.Statement) []Diagnostic {
	var diags []Diagnostic
	walkStatements(body, func(s ast.Statement) {
		ret, ok := s.(*ast.ReturnStatement)
		if !ok || ret.Action == "" {
			return
		}
		if !KnownActions[ret.Action] {
			diags = append(diags, Diagnostic{
				Pos:      ret.At(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("%q is not a recognized return action", ret.Action),
			})
			return
		}
		if !rules[ret.Action] {
			diags = append(diags, Diagnostic{
				Pos:      ret.At(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("return action '%s' is not allowed in %s", ret.Action, phase),
			})
		}
	})
	return diags
}

// checkVariableAccess walks every set/unset/add statement reachable from
// body and flags one whose target namespace isn't writable in phase.
func checkVariableAccess(phase string, writable map[string]bool, body []ast.Statement) []Diagnostic {
	var diags []Diagnostic
	walkStatements(body, func(s ast.Statement) {
		ns, target, p, ok := writeTarget(s)
		if !ok {
			return
		}
		switch ns {
		case "req", "bereq", "beresp", "resp", "obj":
			if !writable[ns] {
				diags = append(diags, Diagnostic{
					Pos:      p,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("%s cannot be writed in %s", target, phase),
				})
			}
		}
	})
	return diags
}

func writeTarget(s ast.Statement) (ns, target string, p ast.Pos, ok bool) {
	switch n := s.(type) {
	case *ast.SetStatement:
		return namespaceOf(n.Target), n.Target, n.At(), true
	case *ast.UnsetStatement:
		return namespaceOf(n.Target), n.Target, n.At(), true
	case *ast.AddStatement:
		return namespaceOf(n.Target), n.Target, n.At(), true
	default:
		return "", "", ast.Pos{}, false
	}
}

func namespaceOf(target string) string {
	for i, c := range target {
		if c == '.' {
			return target[:i]
		}
	}
	return target
}

// walkStatements visits every statement reachable from stmts, including
// nested if/switch bodies, calling visit on each.
func walkStatements(stmts []ast.Statement, visit func(ast.Statement)) {
	for _, s := range stmts {
		visit(s)
		switch n := s.(type) {
		case *ast.IfStatement:
			walkStatements(n.Consequent, visit)
			walkStatements(n.Alternate, visit)
		case *ast.SwitchStatement:
			for _, c := range n.Cases {
				walkStatements(c.Body, visit)
			}
		case *ast.LabelStatement:
			if n.Inner != nil {
				walkStatements([]ast.Statement{n.Inner}, visit)
			}
		}
	}
}
