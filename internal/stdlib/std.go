package stdlib

import (
	"strconv"
	"strings"

	"vclcore/internal/obslog"
	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var stdFuncs = map[string]fn{
	"strlen": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Integer(int64(len(argStr(a, 0))))
	},
	"tolower": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(strings.ToLower(argStr(a, 0)))
	},
	"toupper": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(strings.ToUpper(argStr(a, 0)))
	},
	"strstr": func(ctx *runtime.Context, a []value.Value) value.Value {
		s, sub := argStr(a, 0), argStr(a, 1)
		if i := strings.Index(s, sub); i >= 0 {
			return value.String(s[i:])
		}
		return value.String("")
	},
	"prefixof": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Bool(strings.HasPrefix(argStr(a, 0), argStr(a, 1)))
	},
	"suffixof": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Bool(strings.HasSuffix(argStr(a, 0), argStr(a, 1)))
	},
	"replace": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(strings.ReplaceAll(argStr(a, 0), argStr(a, 1), argStr(a, 2)))
	},
	"replace_prefix": func(ctx *runtime.Context, a []value.Value) value.Value {
		s, prefix, repl := argStr(a, 0), argStr(a, 1), argStr(a, 2)
		if strings.HasPrefix(s, prefix) {
			return value.String(repl + strings.TrimPrefix(s, prefix))
		}
		return value.String(s)
	},
	"replace_suffix": func(ctx *runtime.Context, a []value.Value) value.Value {
		s, suffix, repl := argStr(a, 0), argStr(a, 1), argStr(a, 2)
		if strings.HasSuffix(s, suffix) {
			return value.String(strings.TrimSuffix(s, suffix) + repl)
		}
		return value.String(s)
	},
	"atoi": func(ctx *runtime.Context, a []value.Value) value.Value {
		n, err := strconv.ParseInt(strings.TrimSpace(argStr(a, 0)), 10, 64)
		if err != nil {
			return value.Integer(0)
		}
		return value.Integer(n)
	},
	"atof": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(argFloat(a, 0))
	},
	"itoa": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(strconv.FormatInt(argInt(a, 0), 10))
	},
	"integer2time": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Time(argInt(a, 0))
	},
	"time2integer": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Integer(arg(a, 0).Time)
	},
	"as_integer": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Integer(arg(a, 0).AsInt())
	},
	"as_float": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(argFloat(a, 0))
	},
	"collect": func(ctx *runtime.Context, a []value.Value) value.Value {
		// std.collect(req.http.X) folds repeated headers into one
		// comma-joined value; our HeaderMap already stores them joined,
		// so this is effectively an identity pass-through.
		return arg(a, 0)
	},
	"set": func(ctx *runtime.Context, a []value.Value) value.Value {
		return arg(a, 1)
	},
	"log": func(ctx *runtime.Context, a []value.Value) value.Value {
		obslog.Trace("%s", argStr(a, 0))
		return value.Null()
	},
	"ip": func(ctx *runtime.Context, a []value.Value) value.Value {
		s := argStr(a, 0)
		if s == "" {
			return arg(a, 1)
		}
		return value.IP(s)
	},
}
