package stdlib

import (
	"net/url"
	"sort"
	"strings"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

func splitURL(full string) (base, qs string) {
	if i := strings.IndexByte(full, '?'); i >= 0 {
		return full[:i], full[i+1:]
	}
	return full, ""
}

var querystringFuncs = map[string]fn{
	"get": func(ctx *runtime.Context, a []value.Value) value.Value {
		_, qs := splitURL(argStr(a, 0))
		values, _ := url.ParseQuery(qs)
		if v, ok := values[argStr(a, 1)]; ok && len(v) > 0 {
			return value.String(v[0])
		}
		return arg(a, 2)
	},
	"set": func(ctx *runtime.Context, a []value.Value) value.Value {
		base, qs := splitURL(argStr(a, 0))
		values, _ := url.ParseQuery(qs)
		values.Set(argStr(a, 1), argStr(a, 2))
		return value.String(base + "?" + values.Encode())
	},
	"add": func(ctx *runtime.Context, a []value.Value) value.Value {
		base, qs := splitURL(argStr(a, 0))
		values, _ := url.ParseQuery(qs)
		values.Add(argStr(a, 1), argStr(a, 2))
		return value.String(base + "?" + values.Encode())
	},
	"remove": func(ctx *runtime.Context, a []value.Value) value.Value {
		base, qs := splitURL(argStr(a, 0))
		values, _ := url.ParseQuery(qs)
		values.Del(argStr(a, 1))
		if len(values) == 0 {
			return value.String(base)
		}
		return value.String(base + "?" + values.Encode())
	},
	"clean": func(ctx *runtime.Context, a []value.Value) value.Value {
		base, _ := splitURL(argStr(a, 0))
		return value.String(base)
	},
	"filter_except": func(ctx *runtime.Context, a []value.Value) value.Value {
		base, qs := splitURL(argStr(a, 0))
		values, _ := url.ParseQuery(qs)
		keep := map[string]bool{}
		for _, n := range strings.Split(argStr(a, 1), ",") {
			keep[strings.TrimSpace(n)] = true
		}
		for k := range values {
			if !keep[k] {
				values.Del(k)
			}
		}
		if len(values) == 0 {
			return value.String(base)
		}
		return value.String(base + "?" + values.Encode())
	},
	"sort": func(ctx *runtime.Context, a []value.Value) value.Value {
		base, qs := splitURL(argStr(a, 0))
		values, _ := url.ParseQuery(qs)
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			for _, v := range values[k] {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		if b.Len() == 0 {
			return value.String(base)
		}
		return value.String(base + "?" + b.String())
	},
}
