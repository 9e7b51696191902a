// headerlib.go implements header.* (§6.2): bulk operations against a
// message's header collection, addressed by the dotted namespace path
// ("req.http", "beresp.http", ...) written as the first argument in VCL
// source.
package stdlib

import (
	"strings"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

func resolveHeaderSet(ctx *runtime.Context, collection string) *runtime.HeaderMap {
	ns, _, found := strings.Cut(collection, ".")
	if !found {
		return nil
	}
	msg := ctx.Message(ns)
	if msg == nil {
		return nil
	}
	return msg.Http
}

var headerFuncs = map[string]fn{
	"get": func(ctx *runtime.Context, a []value.Value) value.Value {
		h := resolveHeaderSet(ctx, argStr(a, 0))
		if h == nil {
			return value.String("")
		}
		return value.String(h.Get(argStr(a, 1)))
	},
	"set": func(ctx *runtime.Context, a []value.Value) value.Value {
		h := resolveHeaderSet(ctx, argStr(a, 0))
		if h == nil {
			return value.Null()
		}
		h.Set(argStr(a, 1), argStr(a, 2))
		return value.Null()
	},
	"unset": func(ctx *runtime.Context, a []value.Value) value.Value {
		h := resolveHeaderSet(ctx, argStr(a, 0))
		if h != nil {
			h.Unset(argStr(a, 1))
		}
		return value.Null()
	},
	"filter": func(ctx *runtime.Context, a []value.Value) value.Value {
		h := resolveHeaderSet(ctx, argStr(a, 0))
		if h == nil {
			return value.Null()
		}
		for _, n := range matchingNames(h, argStr(a, 1)) {
			h.Unset(n)
		}
		return value.Null()
	},
	"filter_except": func(ctx *runtime.Context, a []value.Value) value.Value {
		h := resolveHeaderSet(ctx, argStr(a, 0))
		if h == nil {
			return value.Null()
		}
		keep := map[string]bool{}
		for _, n := range strings.Split(argStr(a, 1), ",") {
			keep[strings.ToLower(strings.TrimSpace(n))] = true
		}
		for _, n := range h.Names() {
			if !keep[strings.ToLower(n)] {
				h.Unset(n)
			}
		}
		return value.Null()
	},
}

func matchingNames(h *runtime.HeaderMap, pattern string) []string {
	pattern = strings.ToLower(pattern)
	var out []string
	for _, n := range h.Names() {
		if strings.Contains(strings.ToLower(n), pattern) {
			out = append(out, n)
		}
	}
	return out
}
