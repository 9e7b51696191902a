// tablelib.go implements table.* (§6.2): typed lookups against the static
// key/value tables declared by a "table" block and registered into
// ctx.Tables by the subroutine compiler. Every accessor shares the same
// "miss returns the supplied default" shape.
package stdlib

import (
	"net"
	"strconv"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

func resolveTable(ctx *runtime.Context, a []value.Value) (*runtime.Table, string, bool) {
	name := argStr(a, 0)
	t, ok := ctx.Tables[name]
	if !ok {
		return nil, argStr(a, 1), false
	}
	return t, argStr(a, 1), true
}

var tableFuncs = map[string]fn{
	"lookup": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			return value.String(v)
		}
		return arg(a, 2)
	},
	"lookup_bool": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			return value.Bool(v == "true" || v == "1")
		}
		return arg(a, 2)
	},
	"lookup_integer": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return value.Integer(n)
			}
		}
		return arg(a, 2)
	},
	"lookup_float": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return value.Float(f)
			}
		}
		return arg(a, 2)
	},
	"lookup_ip": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found && net.ParseIP(v) != nil {
			return value.IP(v)
		}
		return arg(a, 2)
	},
	"lookup_rtime": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			return value.RTime(value.ParseMillis(v))
		}
		return arg(a, 2)
	},
	"lookup_backend": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			return value.Backend(v)
		}
		return arg(a, 2)
	},
	"lookup_acl": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			return value.String(v)
		}
		return arg(a, 2)
	},
	"lookup_regex": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return arg(a, 2)
		}
		if v, found := t.Lookup(key); found {
			return value.String(v)
		}
		return arg(a, 2)
	},
	"contains": func(ctx *runtime.Context, a []value.Value) value.Value {
		t, key, ok := resolveTable(ctx, a)
		if !ok {
			return value.Bool(false)
		}
		return value.Bool(t.Contains(key))
	},
}
