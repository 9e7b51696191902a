package interp

import (
	"strings"

	"vclcore/internal/ast"
	"vclcore/internal/obslog"
	"vclcore/internal/runtime"
	"vclcore/internal/stdlib"
	"vclcore/internal/value"
)

// signalKind classifies how a statement (or block) wants control to leave
// its enclosing scope: fall through normally, terminate the subroutine with
// a canonical action, or jump to a label (§4.2, §5).
type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
	sigGoto
	sigRestart
)

type signal struct {
	kind   signalKind
	action string
	label  string
	value  value.Value
}

// ExecBlock runs stmts in order, stopping at the first statement that
// signals something other than "continue" and propagating that signal to
// the caller. Goto targets are resolved against the TOP-LEVEL statement
// list of the enclosing subroutine by the caller (see compiler.go); nested
// blocks only ever produce or forward a sigGoto, never resolve it.
func ExecBlock(ctx *runtime.Context, stmts []ast.Statement) signal {
	for _, s := range stmts {
		sig := ExecStmt(ctx, s)
		if sig.kind != sigNone {
			return sig
		}
	}
	return signal{}
}

// ExecStmt executes one statement, implementing §4.2.
func ExecStmt(ctx *runtime.Context, s ast.Statement) signal {
	switch n := s.(type) {
	case *ast.IfStatement:
		if EvalExpr(ctx, n.Test).Truthy() {
			return ExecBlock(ctx, n.Consequent)
		}
		return ExecBlock(ctx, n.Alternate)

	case *ast.SetStatement:
		execSet(ctx, n)
		return signal{}

	case *ast.UnsetStatement:
		execUnset(ctx, n.Target)
		return signal{}

	case *ast.RemoveStatement:
		execUnset(ctx, n.Target)
		return signal{}

	case *ast.AddStatement:
		execAdd(ctx, n)
		return signal{}

	case *ast.DeclareStatement:
		execDeclare(ctx, n)
		return signal{}

	case *ast.ReturnStatement:
		if n.Value != nil {
			return signal{kind: sigReturn, value: EvalExpr(ctx, n.Value)}
		}
		return signal{kind: sigReturn, action: n.Action}

	case *ast.ErrorStatement:
		execError(ctx, n)
		return signal{kind: sigReturn, action: "error"}

	case *ast.LogStatement:
		obslog.Trace("%s", EvalExpr(ctx, n.Message).AsString())
		return signal{}

	case *ast.SyntheticStatement:
		ctx.Resp.Set("body", value.String(EvalExpr(ctx, n.Content).AsString()))
		return signal{}

	case *ast.SyntheticBase64Statement:
		decoded := stdlibBase64Decode(EvalExpr(ctx, n.Encoded).AsString())
		ctx.Resp.Set("body", value.String(decoded))
		return signal{}

	case *ast.HashDataStatement:
		digest := stdlib.Dispatch(ctx, "digest.hash_md5", []value.Value{EvalExpr(ctx, n.Value)})
		ctx.HashData = append(ctx.HashData, digest.AsString())
		return signal{}

	case *ast.GotoStatement:
		return signal{kind: sigGoto, label: n.Label}

	case *ast.LabelStatement:
		if n.Inner != nil {
			return ExecStmt(ctx, n.Inner)
		}
		return signal{}

	case *ast.RestartStatement:
		return execRestart(ctx)

	case *ast.CallStatement:
		return execCall(ctx, n)

	case *ast.SwitchStatement:
		return execSwitch(ctx, n)

	case *ast.EsiStatement:
		ctx.Req.Set("esi", value.Bool(true))
		return signal{}

	case *ast.ExpressionStatement:
		EvalExpr(ctx, n.Expr)
		return signal{}

	default:
		return signal{}
	}
}

func execSet(ctx *runtime.Context, n *ast.SetStatement) {
	rhs := EvalExpr(ctx, n.Value)
	if n.Operator == ast.OpAssign {
		setTarget(ctx, n.Target, n.Value, rhs)
		return
	}
	current := ResolveIdentifier(ctx, n.Target)
	setTarget(ctx, n.Target, nil, applyCompound(n.Target, n.Operator, current, rhs))
}

// applyCompound implements the compound assignment operators of §4.2.
// Division and modulo by zero are fatal within the statement, caught at the
// subroutine boundary (§7).
func applyCompound(target string, op ast.SetOperator, current, rhs value.Value) value.Value {
	switch op {
	case ast.OpAddAssign:
		if current.Kind == value.KindString || rhs.Kind == value.KindString {
			return value.String(current.AsString() + rhs.AsString())
		}
		return addNumeric(current, rhs)
	case ast.OpSubAssign:
		return subNumeric(current, rhs)
	case ast.OpMulAssign:
		return mulNumeric(current, rhs)
	case ast.OpDivAssign:
		if rhs.AsFloat() == 0 {
			raiseFatal("division by zero assigning to %s", target)
		}
		return divNumeric(current, rhs)
	case ast.OpModAssign:
		if rhs.AsInt() == 0 {
			raiseFatal("modulo by zero assigning to %s", target)
		}
		return value.Integer(current.AsInt() % rhs.AsInt())
	case ast.OpAndAssign:
		return value.Bool(current.Truthy() && rhs.Truthy())
	case ast.OpOrAssign:
		return value.Bool(current.Truthy() || rhs.Truthy())
	case ast.OpBAndAssign:
		return value.Integer(current.AsInt() & rhs.AsInt())
	case ast.OpBOrAssign:
		return value.Integer(current.AsInt() | rhs.AsInt())
	case ast.OpXorAssign:
		return value.Integer(current.AsInt() ^ rhs.AsInt())
	case ast.OpShlAssign:
		return value.Integer(current.AsInt() << uint(rhs.AsInt()&63))
	case ast.OpShrAssign:
		return value.Integer(current.AsInt() >> uint(rhs.AsInt()&63))
	default:
		return rhs
	}
}

func addNumeric(a, b value.Value) value.Value {
	if a.Kind == value.KindInteger && b.Kind == value.KindInteger {
		return value.Integer(a.Int + b.Int)
	}
	return value.Float(a.AsFloat() + b.AsFloat())
}

func subNumeric(a, b value.Value) value.Value {
	if a.Kind == value.KindInteger && b.Kind == value.KindInteger {
		return value.Integer(a.Int - b.Int)
	}
	return value.Float(a.AsFloat() - b.AsFloat())
}

func mulNumeric(a, b value.Value) value.Value {
	if a.Kind == value.KindInteger && b.Kind == value.KindInteger {
		return value.Integer(a.Int * b.Int)
	}
	return value.Float(a.AsFloat() * b.AsFloat())
}

func divNumeric(a, b value.Value) value.Value {
	if a.Kind == value.KindInteger && b.Kind == value.KindInteger && a.Int%b.Int == 0 {
		return value.Integer(a.Int / b.Int)
	}
	return value.Float(a.AsFloat() / b.AsFloat())
}

// ttlSeconds recovers the ms|s|m|h|d time-value grammar of §6.5 for a TTL-bearing
// field assignment (§3.6 TTL invariant). A literal number's unit suffix lives
// on ast.NumberLiteral.Raw since EvalExpr discards it when producing an
// INTEGER/FLOAT value; anything else (a variable, a string expression) has
// already lost that distinction, so its stringified value is parsed as-is.
func ttlSeconds(expr ast.Expression, v value.Value) value.Value {
	raw := v.AsString()
	if lit, ok := expr.(*ast.NumberLiteral); ok {
		raw = lit.Raw
	}
	return value.Integer(value.ParseSeconds(raw))
}

// setTarget resolves a dotted path for writing, mirroring ResolveIdentifier's
// read-side dispatch table (§4.3, §4.2).
func setTarget(ctx *runtime.Context, target string, expr ast.Expression, v value.Value) {
	parts := strings.Split(target, ".")
	if len(parts) == 1 {
		ctx.Locals[target] = v
		return
	}
	ns := parts[0]
	switch ns {
	case "var":
		ctx.Locals[strings.Join(parts[1:], ".")] = v
	case "req", "bereq", "beresp", "resp", "obj":
		msg := ctx.Message(ns)
		if msg == nil {
			return
		}
		rest := parts[1:]
		if rest[0] == "http" {
			msg.Http.Set(strings.Join(rest[1:], "."), v.AsString())
			return
		}
		field := strings.Join(rest, ".")

		// §4.2 set-rule 2: req.backend accepts a backend/director identifier
		// and additionally becomes the request's current backend when the
		// name is registered (§3.6 Open-Q5).
		if ns == "req" && field == "backend" {
			msg.Set(field, v)
			if _, ok := ctx.Backends[v.AsString()]; ok {
				ctx.CurrentBackend = v.AsString()
			}
			return
		}

		// §4.2 set-rule 3 / §3.6 TTL invariant: ttl/grace/stale_while_revalidate
		// carry the time-value grammar and must be stored as whole seconds.
		if (ns == "beresp" && (field == "ttl" || field == "grace" || field == "stale_while_revalidate")) ||
			(ns == "obj" && (field == "ttl" || field == "grace")) {
			msg.Set(field, ttlSeconds(expr, v))
			return
		}

		// §4.2 set-rule 4: beresp.do_esi is boolean and mirrors into the
		// client-facing response so downstream ESI processing can see it.
		if ns == "beresp" && field == "do_esi" {
			b := value.Bool(v.Truthy())
			msg.Set(field, b)
			ctx.Resp.Http.Set("X-ESI", b.AsString())
			return
		}

		msg.Set(field, v)
	default:
		ctx.Overrides[target] = v
	}
}

func execUnset(ctx *runtime.Context, target string) {
	if strings.HasSuffix(target, "*") {
		prefix := strings.TrimSuffix(target, "*")
		parts := strings.SplitN(prefix, ".", 3)
		if len(parts) >= 2 && parts[1] == "http" {
			if msg := ctx.Message(parts[0]); msg != nil {
				rest := ""
				if len(parts) == 3 {
					rest = parts[2]
				}
				msg.Http.UnsetWildcard(rest)
			}
		}
		return
	}

	parts := strings.Split(target, ".")
	if len(parts) == 1 {
		delete(ctx.Locals, target)
		return
	}
	ns := parts[0]
	switch ns {
	case "var":
		delete(ctx.Locals, strings.Join(parts[1:], "."))
	case "req", "bereq", "beresp", "resp", "obj":
		msg := ctx.Message(ns)
		if msg == nil {
			return
		}
		rest := parts[1:]
		if rest[0] == "http" {
			msg.Http.Unset(strings.Join(rest[1:], "."))
			return
		}
		delete(msg.Fields, strings.Join(rest, "."))
	default:
		delete(ctx.Overrides, target)
	}
}

func execAdd(ctx *runtime.Context, n *ast.AddStatement) {
	v := EvalExpr(ctx, n.Value)
	parts := strings.Split(n.Target, ".")
	if len(parts) < 3 || parts[1] != "http" {
		// §3.3: "add" is only meaningful for HTTP header collections;
		// anything else behaves like a plain set.
		setTarget(ctx, n.Target, n.Value, v)
		return
	}
	msg := ctx.Message(parts[0])
	if msg == nil {
		return
	}
	msg.Http.Add(strings.Join(parts[2:], "."), v.AsString())
}

func execDeclare(ctx *runtime.Context, n *ast.DeclareStatement) {
	var zero value.Value
	switch strings.ToUpper(n.Type) {
	case "STRING":
		zero = value.String("")
	case "INTEGER":
		zero = value.Integer(0)
	case "FLOAT":
		zero = value.Float(0)
	case "BOOL":
		zero = value.Bool(false)
	case "TIME":
		zero = value.Time(0)
	case "RTIME":
		zero = value.RTime(0)
	case "IP":
		zero = value.IP("0.0.0.0")
	case "BACKEND":
		zero = value.Backend("")
	default:
		zero = value.String("")
	}
	if n.Initial != nil {
		zero = EvalExpr(ctx, n.Initial)
	}
	ctx.Locals[n.Name] = zero
}

func execError(ctx *runtime.Context, n *ast.ErrorStatement) {
	if n.Status != nil {
		ctx.Obj.Set("status", EvalExpr(ctx, n.Status))
	}
	if n.Message != nil {
		ctx.Obj.Set("response", EvalExpr(ctx, n.Message))
	}
}

func execRestart(ctx *runtime.Context) signal {
	ctx.Restarts++
	if ctx.Restarts > runtime.MaxRestarts {
		raiseFatal("max restarts (%d) exceeded", runtime.MaxRestarts)
	}
	return signal{kind: sigRestart}
}

func execCall(ctx *runtime.Context, n *ast.CallStatement) signal {
	f, ok := ctx.Custom[n.Name]
	if !ok {
		obslog.Diagnostic("call to unknown subroutine %q", n.Name)
		return signal{}
	}
	if params, ok := ctx.ParamNames[n.Name]; ok {
		for i, p := range params {
			if i < len(n.Args) {
				ctx.Locals[p] = EvalExpr(ctx, n.Args[i])
			}
		}
	}
	res := f(ctx)
	if res.Action != "" {
		return signal{kind: sigReturn, action: res.Action}
	}
	ctx.Locals["__return_value__"] = res.Value
	return signal{}
}

func execSwitch(ctx *runtime.Context, n *ast.SwitchStatement) signal {
	subject := EvalExpr(ctx, n.Subject)
	matchedIndex := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			continue // default handled in the fallback pass below
		}
		if value.Equal(subject, EvalExpr(ctx, c.Test)) {
			matchedIndex = i
			break
		}
	}
	if matchedIndex == -1 {
		for i, c := range n.Cases {
			if c.Test == nil {
				matchedIndex = i
				break
			}
		}
	}
	if matchedIndex == -1 {
		return signal{}
	}
	for i := matchedIndex; i < len(n.Cases); i++ {
		sig := ExecBlock(ctx, n.Cases[i].Body)
		if sig.kind != sigNone {
			return sig
		}
		if !n.Cases[i].Fallthrough {
			break
		}
	}
	return signal{}
}

func stdlibBase64Decode(s string) string {
	v := stdlib.Dispatch(nil, "digest.base64_decode", []value.Value{value.String(s)})
	return v.AsString()
}
