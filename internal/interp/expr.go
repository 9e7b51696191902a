// Package interp implements the expression evaluator, statement executor,
// subroutine compiler and driver: §4.1–§4.3 and §4.5 of the VCL processor
// specification. It is the tree-walking interpreter at the center of THE
// CORE — everything here is synchronous and CPU-bound per §5.
package interp

import (
	"regexp"

	"vclcore/internal/ast"
	"vclcore/internal/metrics"
	"vclcore/internal/obslog"
	"vclcore/internal/runtime"
	"vclcore/internal/stdlib"
	"vclcore/internal/value"
)

// EvalExpr evaluates e against ctx, implementing §4.3.
func EvalExpr(ctx *runtime.Context, e ast.Expression) value.Value {
	switch n := e.(type) {
	case *ast.StringLiteral:
		return value.String(n.Value)

	case *ast.NumberLiteral:
		if n.IsFloat {
			return value.Float(n.Value)
		}
		return value.Integer(int64(n.Value))

	case *ast.RegexLiteral:
		re, err := compileRegex(n.Pattern, n.Flags)
		if err != nil {
			obslog.Diagnostic("invalid regex %q: %v", n.Pattern, err)
			return value.Null()
		}
		return value.Regex(re)

	case *ast.Identifier:
		return ResolveIdentifier(ctx, n.Name)

	case *ast.MemberAccess:
		return evalMemberAccess(ctx, n)

	case *ast.UnaryExpression:
		return evalUnary(ctx, n)

	case *ast.BinaryExpression:
		return evalBinary(ctx, n)

	case *ast.TernaryExpression:
		if EvalExpr(ctx, n.Test).Truthy() {
			return EvalExpr(ctx, n.Consequent)
		}
		return EvalExpr(ctx, n.Alternate)

	case *ast.FunctionCall:
		return evalCall(ctx, n)

	default:
		return value.String("")
	}
}

func evalMemberAccess(ctx *runtime.Context, n *ast.MemberAccess) value.Value {
	if id, ok := n.Object.(*ast.Identifier); ok {
		return ResolveIdentifier(ctx, id.Name+"."+n.Property)
	}
	return value.String("")
}

func evalUnary(ctx *runtime.Context, n *ast.UnaryExpression) value.Value {
	v := EvalExpr(ctx, n.Operand)
	switch n.Operator {
	case ast.UnaryNot:
		return value.Bool(!v.Truthy())
	case ast.UnaryNeg:
		if v.Kind == value.KindInteger {
			return value.Integer(-v.Int)
		}
		return value.Float(-v.AsFloat())
	default:
		return value.String("")
	}
}

func evalCall(ctx *runtime.Context, n *ast.FunctionCall) value.Value {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		// table.* and ratelimit.* functions take a table/penaltybox/
		// ratecounter NAME as their first argument, written as a bare
		// identifier in VCL source rather than a string literal. Those
		// names aren't part of the dotted-path resolution table, so pass
		// the identifier text through verbatim instead of resolving it.
		if i == 0 && isNameTakingFunction(n.Name) {
			if id, ok := a.(*ast.Identifier); ok {
				args[i] = value.String(id.Name)
				continue
			}
		}
		args[i] = EvalExpr(ctx, a)
	}
	return stdlib.Dispatch(ctx, n.Name, args)
}

func isNameTakingFunction(name string) bool {
	switch {
	case len(name) > 6 && name[:6] == "table.":
		return true
	case len(name) > 10 && name[:10] == "ratelimit.":
		return true
	case len(name) > 7 && name[:7] == "header.":
		return true
	default:
		return false
	}
}

func evalBinary(ctx *runtime.Context, n *ast.BinaryExpression) value.Value {
	switch n.Operator {
	case ast.BinAnd:
		l := EvalExpr(ctx, n.Left)
		if !l.Truthy() {
			return l
		}
		return EvalExpr(ctx, n.Right)

	case ast.BinOr:
		l := EvalExpr(ctx, n.Left)
		if l.Truthy() {
			return l
		}
		return EvalExpr(ctx, n.Right)

	case ast.BinMatch, ast.BinNotMatch:
		return evalMatch(ctx, n)
	}

	left := EvalExpr(ctx, n.Left)
	right := EvalExpr(ctx, n.Right)

	switch n.Operator {
	case ast.BinConcat:
		return value.String(left.AsString() + right.AsString())
	case ast.BinEq:
		return value.Bool(value.Equal(left, right))
	case ast.BinNeq:
		return value.Bool(!value.Equal(left, right))
	case ast.BinLt:
		return value.Bool(left.AsFloat() < right.AsFloat())
	case ast.BinLte:
		return value.Bool(left.AsFloat() <= right.AsFloat())
	case ast.BinGt:
		return value.Bool(left.AsFloat() > right.AsFloat())
	case ast.BinGte:
		return value.Bool(left.AsFloat() >= right.AsFloat())
	case ast.BinAdd:
		if left.Kind == value.KindString || right.Kind == value.KindString {
			if !isNumericLiteralPair(left, right) {
				return value.String(left.AsString() + right.AsString())
			}
		}
		return numericResult(left, right, func(a, b float64) float64 { return a + b })
	case ast.BinSub:
		return numericResult(left, right, func(a, b float64) float64 { return a - b })
	case ast.BinMul:
		return numericResult(left, right, func(a, b float64) float64 { return a * b })
	case ast.BinDiv:
		if right.AsFloat() == 0 {
			obslog.Diagnostic("division by zero")
			return value.Integer(0)
		}
		return numericResult(left, right, func(a, b float64) float64 { return a / b })
	case ast.BinMod:
		if right.AsFloat() == 0 {
			obslog.Diagnostic("modulo by zero")
			return value.Integer(0)
		}
		return value.Integer(left.AsInt() % right.AsInt())
	default:
		return value.String("")
	}
}

// isNumericLiteralPair reports whether both sides are non-string numeric
// kinds. BinAdd consults it only once one side is a STRING, where it is
// false, so "+" with a STRING operand always concatenates, matching how VCL programs commonly use it for URL/header
// assembly (see perbu/vclparser's `req.url + "?test=1"` fixture).
func isNumericLiteralPair(a, b value.Value) bool {
	numeric := func(k value.Kind) bool {
		return k == value.KindInteger || k == value.KindFloat || k == value.KindTime || k == value.KindRTime
	}
	return numeric(a.Kind) && numeric(b.Kind)
}

func numericResult(a, b value.Value, op func(x, y float64) float64) value.Value {
	if a.Kind == value.KindInteger && b.Kind == value.KindInteger {
		return value.Integer(int64(op(float64(a.Int), float64(b.Int))))
	}
	return value.Float(op(a.AsFloat(), b.AsFloat()))
}

// evalMatch implements "~" / "!~" (§4.3): ACL membership when the right
// operand names a registered ACL, otherwise a regex test that refreshes
// ctx.ReGroups.
func evalMatch(ctx *runtime.Context, n *ast.BinaryExpression) value.Value {
	negate := n.Operator == ast.BinNotMatch

	if rightIdent, ok := n.Right.(*ast.Identifier); ok && ctx.ACLs.Has(rightIdent.Name) {
		left := EvalExpr(ctx, n.Left)
		matched := ctx.ACLs.Get(rightIdent.Name).Match(left.AsString())
		metrics.ACLLookup(matched)
		return value.Bool(matched != negate)
	}

	left := EvalExpr(ctx, n.Left)
	var re *regexp.Regexp
	switch r := EvalExpr(ctx, n.Right); r.Kind {
	case value.KindRegex:
		re = r.Regex
	default:
		compiled, err := compileRegex(r.AsString(), "")
		if err != nil {
			obslog.Diagnostic("invalid regex %q: %v", r.AsString(), err)
			// §7: invalid regex yields the negated polarity of the operator.
			return value.Bool(negate)
		}
		re = compiled
	}

	subject := left.AsString()
	match := re.FindStringSubmatchIndex(subject)
	ctx.ResetGroups()
	if match == nil {
		return value.Bool(negate)
	}
	groups := re.FindStringSubmatch(subject)
	for i, g := range groups {
		ctx.ReGroups[i] = g
	}
	return value.Bool(!negate)
}

func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	expr := pattern
	if flags != "" {
		expr = "(?" + flags + ")" + pattern
	}
	return regexp.Compile(expr)
}
