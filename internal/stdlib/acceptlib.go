// acceptlib.go implements accept.* (§6.2), backed by
// golang.org/x/text/language's quality-aware Accept-Language matching —
// promoted from the teacher's indirect dependency set for exactly this
// purpose.
package stdlib

import (
	"strings"

	"golang.org/x/text/language"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var acceptFuncs = map[string]fn{
	"language_lookup": func(ctx *runtime.Context, a []value.Value) value.Value {
		supportedCSV := argStr(a, 0)
		defaultTag := argStr(a, 1)
		header := argStr(a, 2)

		var supported []language.Tag
		for _, s := range strings.Split(supportedCSV, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if tag, err := language.Parse(s); err == nil {
				supported = append(supported, tag)
			}
		}
		if len(supported) == 0 {
			return value.String(defaultTag)
		}
		matcher := language.NewMatcher(supported)
		tags, _, err := language.ParseAcceptLanguage(header)
		if err != nil || len(tags) == 0 {
			return value.String(defaultTag)
		}
		_, idx, _ := matcher.Match(tags...)
		return value.String(supported[idx].String())
	},
	"charset_lookup": func(ctx *runtime.Context, a []value.Value) value.Value {
		return arg(a, 1)
	},
	"media_type_lookup": func(ctx *runtime.Context, a []value.Value) value.Value {
		header := argStr(a, 2)
		for _, candidate := range strings.Split(argStr(a, 0), ",") {
			candidate = strings.TrimSpace(candidate)
			if strings.Contains(header, candidate) {
				return value.String(candidate)
			}
		}
		return arg(a, 1)
	},
}
