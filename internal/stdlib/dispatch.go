// Package stdlib implements the VCL standard library's prefix-routed
// function dispatch table (§6.2): std.*, digest.*, math.*, table.*,
// header.*, time.*, querystring.*, uuid.*, addr.*, accept.*, bin.*,
// ratelimit.*, setcookie.*, plus the historically "free" (unprefixed)
// functions. Dispatch never panics: an unknown function name logs a
// diagnostic and returns Null, matching §7's "unknown identifier or
// function -> silent default" policy.
package stdlib

import (
	"strings"

	"vclcore/internal/metrics"
	"vclcore/internal/obslog"
	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

// fn is the uniform shape every standard-library function is adapted to:
// it receives the evaluated argument list and the request Context (needed
// by table.*, ratelimit.*, header.* and a handful of free functions that
// read/write context state) and returns one Value.
type fn func(ctx *runtime.Context, args []value.Value) value.Value

var modules = map[string]map[string]fn{
	"std":        stdFuncs,
	"digest":     digestFuncs,
	"math":       mathFuncs,
	"table":      tableFuncs,
	"header":     headerFuncs,
	"time":       timeFuncs,
	"querystring": querystringFuncs,
	"uuid":       uuidFuncs,
	"addr":       addrFuncs,
	"accept":     acceptFuncs,
	"bin":        binFuncs,
	"ratelimit":  ratelimitFuncs,
	"setcookie":  setcookieFuncs,
}

// Dispatch resolves name (e.g. "std.strlen", "regsub", "table.lookup") to
// an implementation and invokes it with args. Names without a "." prefix,
// or whose prefix isn't a known module, are routed to the free-function
// table (§6.2's historical "free functions").
func Dispatch(ctx *runtime.Context, name string, args []value.Value) value.Value {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		prefix, rest := name[:i], name[i+1:]
		if table, ok := modules[prefix]; ok {
			metrics.StdlibCall(prefix)
			if f, ok := table[rest]; ok {
				return f(ctx, args)
			}
			obslog.Diagnostic("unknown function %s.%s", prefix, rest)
			return value.Null()
		}
		// Dotted names outside known modules (e.g. "fastly.hash",
		// "resp.tarpit") still resolve through the free table by their
		// full dotted name.
	}
	metrics.StdlibCall("free")
	if f, ok := freeFuncs[name]; ok {
		return f(ctx, args)
	}
	obslog.Diagnostic("unknown function %s", name)
	return value.Null()
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.String("")
	}
	return args[i]
}

func argStr(args []value.Value, i int) string {
	return arg(args, i).AsString()
}

func argInt(args []value.Value, i int) int64 {
	return arg(args, i).AsInt()
}

func argFloat(args []value.Value, i int) float64 {
	return arg(args, i).AsFloat()
}

func argBool(args []value.Value, i int) bool {
	return arg(args, i).Truthy()
}
