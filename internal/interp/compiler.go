// compiler.go implements the subroutine compiler (§4.1): binding an
// ast.Program's declarations into a Compiled value whose Subs map holds one
// closure per subroutine, plus the shared ACL/table/backend/director/
// penaltybox/ratecounter registries every Context derived from it shares.
package interp

import (
	"vclcore/internal/acl"
	"vclcore/internal/ast"
	"vclcore/internal/metrics"
	"vclcore/internal/obslog"
	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

// Compiled is the immutable result of compiling one ast.Program. It is safe
// to share across concurrent requests; NewContext derives a fresh per-
// request runtime.Context that still shares the global registries (ACLs,
// tables, backends, directors, penaltyboxes, ratecounters), matching real
// VCL's global-versus-per-request split (§3.6, §5).
type Compiled struct {
	Subs   map[string]func(*runtime.Context) runtime.SubResult
	Params map[string][]string

	ACLs         *acl.Registry
	Tables       map[string]*runtime.Table
	Backends     map[string]*runtime.Backend
	Directors    map[string]*runtime.Director
	Penaltyboxes map[string]*runtime.Penaltybox
	Ratecounters map[string]*runtime.Ratecounter

	Diagnostics []string
}

// Compile binds prog's declarations and subroutines (§4.1).
func Compile(prog *ast.Program) *Compiled {
	c := &Compiled{
		Subs:         make(map[string]func(*runtime.Context) runtime.SubResult),
		Params:       make(map[string][]string),
		ACLs:         acl.NewRegistry(),
		Tables:       make(map[string]*runtime.Table),
		Backends:     make(map[string]*runtime.Backend),
		Directors:    make(map[string]*runtime.Director),
		Penaltyboxes: make(map[string]*runtime.Penaltybox),
		Ratecounters: make(map[string]*runtime.Ratecounter),
	}

	for _, decl := range prog.ACLs {
		c.ACLs.Add(decl.Name)
		for _, e := range decl.Entries {
			c.ACLs.AddEntry(decl.Name, e.IP, e.Prefix, e.Negated)
		}
	}
	c.Diagnostics = append(c.Diagnostics, c.ACLs.Diagnostics...)

	for _, decl := range prog.Backends {
		c.Backends[decl.Name] = &runtime.Backend{
			Name:                decl.Name,
			Host:                decl.Host,
			Port:                decl.Port,
			SSL:                 decl.SSL,
			ConnectTimeout:      decl.ConnectTimeout,
			FirstByteTimeout:    decl.FirstByteTimeout,
			BetweenBytesTimeout: decl.BetweenBytesTimeout,
			MaxConnections:      decl.MaxConnections,
			IsHealthy:           true,
			Probe:               convertProbe(decl.Probe),
		}
	}

	for _, decl := range prog.Directors {
		members := make([]runtime.Member, len(decl.Members))
		for i, m := range decl.Members {
			members[i] = runtime.Member{Backend: m.Backend, Weight: m.Weight}
		}
		c.Directors[decl.Name] = &runtime.Director{
			Name:    decl.Name,
			Type:    runtime.DirectorType(decl.Type),
			Members: members,
			Quorum:  decl.Quorum,
			Retries: decl.Retries,
		}
	}

	for _, decl := range prog.Tables {
		t := runtime.NewTable(decl.Name)
		for _, e := range decl.Entries {
			t.Add(e.Key, e.Value)
		}
		c.Tables[decl.Name] = t
	}

	for _, decl := range prog.Penaltyboxes {
		c.Penaltyboxes[decl.Name] = runtime.NewPenaltybox(decl.Name)
	}
	for _, decl := range prog.Ratecounters {
		c.Ratecounters[decl.Name] = runtime.NewRatecounter(decl.Name)
	}

	for _, sub := range prog.Subroutines {
		names := make([]string, len(sub.Params))
		for i, p := range sub.Params {
			names[i] = p.Name
		}
		c.Params[sub.Name] = names
		c.Subs[sub.Name] = compileSub(sub.Name, sub.Body, sub.ReturnType)
	}

	return c
}

func convertProbe(p *ast.ProbeDecl) *runtime.Probe {
	if p == nil {
		return nil
	}
	return &runtime.Probe{
		URL:            p.URL,
		ExpectedStatus: p.ExpectedStatus,
		Interval:       p.Interval,
		Timeout:        p.Timeout,
		Window:         p.Window,
		Threshold:      p.Threshold,
		Initial:        p.Initial,
	}
}

// NewContext derives a fresh per-request Context sharing c's global
// registries (§3.6, §5: registries are immutable configuration; Context is
// per-request mutable state).
func (c *Compiled) NewContext() *runtime.Context {
	ctx := runtime.NewContext()
	ctx.ACLs = c.ACLs
	ctx.Tables = c.Tables
	ctx.Backends = c.Backends
	ctx.Directors = c.Directors
	ctx.Penaltyboxes = c.Penaltyboxes
	ctx.Ratecounters = c.Ratecounters
	ctx.ParamNames = c.Params
	ctx.Custom = make(map[string]func(*runtime.Context) runtime.SubResult, len(c.Subs))
	for name, f := range c.Subs {
		ctx.Custom[name] = f
	}
	return ctx
}

// compileSub binds one subroutine body to a closure implementing §4.1's
// execution model: sequential statement execution, goto/label jumps
// resolved against this subroutine's own top-level label table, and a
// recover boundary that turns a fatal statement error into the phase's
// error action.
func compileSub(name string, body []ast.Statement, returnType string) func(*runtime.Context) runtime.SubResult {
	labels := map[string]int{}
	for i, s := range body {
		if lbl, ok := s.(*ast.LabelStatement); ok {
			labels[lbl.Name] = i
		}
	}

	return func(ctx *runtime.Context) (result runtime.SubResult) {
		defer func() {
			if r := recover(); r != nil {
				fe, ok := r.(fatalStmtError)
				if !ok {
					panic(r)
				}
				obslog.Fatal("subroutine %s: %s", name, fe.msg)
				metrics.SubroutineError(name)
				if returnType == "" {
					result = runtime.SubResult{Action: errorActionFor(name)}
				}
			}
		}()

		idx := 0
		for idx < len(body) {
			sig := ExecStmt(ctx, body[idx])
			switch sig.kind {
			case sigNone:
				idx++
			case sigGoto:
				target, ok := labels[sig.label]
				if !ok || !ctx.BumpGotoHop() {
					obslog.Diagnostic("goto: unresolved or hop-limited label %q in subroutine %s", sig.label, name)
					return runtime.SubResult{}
				}
				idx = target
			case sigReturn:
				if returnType != "" {
					return runtime.SubResult{Value: sig.value}
				}
				return runtime.SubResult{Action: normalizeAction(sig.action, name)}
			case sigRestart:
				metrics.Restart()
				return runtime.SubResult{Action: "restart"}
			}
		}
		if returnType == "" {
			return runtime.SubResult{Action: defaultActionFor(name)}
		}
		return runtime.SubResult{Value: value.Null()}
	}
}

// normalizeAction applies the per-phase action aliasing §4.1 documents
// (e.g. bare "return" with no action in vcl_deliver means "deliver").
func normalizeAction(action, phase string) string {
	if action != "" {
		return action
	}
	return defaultActionFor(phase)
}

// defaultActionFor returns the canonical action a phase subroutine falls
// through to when it runs off the end without an explicit return (§4.1's
// phase default-action table).
func defaultActionFor(phase string) string {
	switch phase {
	case "vcl_recv":
		return "lookup"
	case "vcl_hash":
		return "hash"
	case "vcl_hit":
		return "fetch"
	case "vcl_miss":
		return "fetch"
	case "vcl_pass":
		return "fetch"
	case "vcl_fetch":
		return "deliver"
	case "vcl_deliver":
		return "deliver"
	case "vcl_error":
		return "deliver"
	case "vcl_pipe":
		return "pipe"
	case "vcl_init":
		return "ok"
	case "vcl_synth":
		return "deliver"
	default:
		return ""
	}
}

// errorActionFor returns the canonical action substituted when phase's
// subroutine body raises a fatal statement-level error (§7's error
// propagation policy).
func errorActionFor(phase string) string {
	switch phase {
	case "vcl_recv", "vcl_hash", "vcl_hit", "vcl_miss", "vcl_pass":
		return "error"
	case "vcl_fetch":
		return "error"
	case "vcl_deliver":
		return "deliver"
	case "vcl_error":
		return "deliver"
	case "vcl_pipe":
		return "pipe"
	case "vcl_init":
		return "ok"
	case "vcl_synth":
		return "deliver"
	default:
		return "error"
	}
}
