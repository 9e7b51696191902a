// setcookielib.go implements setcookie.* (§6.2): formatting a Set-Cookie
// header value from its component parts.
package stdlib

import (
	"fmt"
	"strings"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var setcookieFuncs = map[string]fn{
	"format": func(ctx *runtime.Context, a []value.Value) value.Value {
		name, val := argStr(a, 0), argStr(a, 1)
		var b strings.Builder
		fmt.Fprintf(&b, "%s=%s", name, val)
		if len(a) > 2 && argStr(a, 2) != "" {
			fmt.Fprintf(&b, "; Max-Age=%s", argStr(a, 2))
		}
		if len(a) > 3 && argStr(a, 3) != "" {
			fmt.Fprintf(&b, "; Path=%s", argStr(a, 3))
		}
		if len(a) > 4 && argStr(a, 4) != "" {
			fmt.Fprintf(&b, "; Domain=%s", argStr(a, 4))
		}
		return value.String(b.String())
	},
	"get_value_for_name": func(ctx *runtime.Context, a []value.Value) value.Value {
		cookieHeader, name := argStr(a, 0), argStr(a, 1)
		for _, part := range strings.Split(cookieHeader, ";") {
			kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
			if len(kv) == 2 && kv[0] == name {
				return value.String(kv[1])
			}
		}
		return value.String("")
	},
}
