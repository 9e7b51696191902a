package stdlib

import (
	"strconv"
	"strings"
	"time"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var timeFuncs = map[string]fn{
	"add": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Time(arg(a, 0).Time + argInt(a, 1))
	},
	"sub": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.RTime((arg(a, 0).Time - arg(a, 1).Time) * 1000)
	},
	"is_after": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Bool(arg(a, 0).Time > arg(a, 1).Time)
	},
	"hex_to_time": func(ctx *runtime.Context, a []value.Value) value.Value {
		n, err := parseHexInt(argStr(a, 1))
		if err != nil {
			return value.Time(0)
		}
		return value.Time(n)
	},
	"format": func(ctx *runtime.Context, a []value.Value) value.Value {
		layout := argStr(a, 0)
		t := time.Unix(arg(a, 1).Time, 0).UTC()
		return value.String(t.Format(translateStrftime(layout)))
	},
	"format_utc": func(ctx *runtime.Context, a []value.Value) value.Value {
		t := time.Unix(arg(a, 1).Time, 0).UTC()
		return value.String(t.Format(translateStrftime(argStr(a, 0))))
	},
}

func parseHexInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(s, "0x"), 16, 64)
}

// translateStrftime maps the handful of strftime directives VCL programs
// commonly pass to time.format into Go's reference-time layout.
func translateStrftime(layout string) string {
	replacer := strings.NewReplacer(
		"%Y", "2006", "%m", "01", "%d", "02",
		"%H", "15", "%M", "04", "%S", "05",
		"%a", "Mon", "%A", "Monday", "%b", "Jan", "%B", "January",
		"%z", "-0700", "%Z", "MST",
	)
	return replacer.Replace(layout)
}
