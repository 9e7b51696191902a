// free.go implements the historically "free" (unprefixed, or irregularly
// dotted) VCL functions: regsub/regsuball, urlencode/urldecode, the
// json/xml/cstr escapers, subfield, randombool/randomint/randomstr, and a
// handful of Fastly-specific no-ops named in SPEC_FULL.md's supplemented
// feature set (resp.tarpit, early_hints, h2.*, h3.*) that exist on real
// Fastly services but have no externally observable effect here.
package stdlib

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var freeFuncs = map[string]fn{
	"if": func(ctx *runtime.Context, a []value.Value) value.Value {
		if argBool(a, 0) {
			return arg(a, 1)
		}
		return arg(a, 2)
	},
	"substr": func(ctx *runtime.Context, a []value.Value) value.Value {
		s := argStr(a, 0)
		offset := int(argInt(a, 1))
		length := -1
		if len(a) > 2 {
			length = int(argInt(a, 2))
		}
		return value.String(substr(s, offset, length))
	},
	"regsub": func(ctx *runtime.Context, a []value.Value) value.Value {
		return regexReplace(argStr(a, 0), argStr(a, 1), argStr(a, 2), false)
	},
	"regsuball": func(ctx *runtime.Context, a []value.Value) value.Value {
		return regexReplace(argStr(a, 0), argStr(a, 1), argStr(a, 2), true)
	},
	"urlencode": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(urlEncode(argStr(a, 0)))
	},
	"urldecode": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(urlDecode(argStr(a, 0)))
	},
	"json.escape": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(jsonEscape(argStr(a, 0)))
	},
	"json_escape": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(jsonEscape(argStr(a, 0)))
	},
	"cstr_escape": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(cstrEscape(argStr(a, 0)))
	},
	"xml_escape": func(ctx *runtime.Context, a []value.Value) value.Value {
		r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
		return value.String(r.Replace(argStr(a, 0)))
	},
	"boltsort.sort": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(argStr(a, 0))
	},
	"subfield": func(ctx *runtime.Context, a []value.Value) value.Value {
		fields := strings.Split(argStr(a, 0), ",")
		idx := int(argInt(a, 1))
		for i, f := range fields {
			if i == idx {
				return value.String(strings.TrimSpace(f))
			}
		}
		return value.String("")
	},
	"randombool": func(ctx *runtime.Context, a []value.Value) value.Value {
		numerator, denominator := argInt(a, 0), argInt(a, 1)
		if denominator <= 0 {
			return value.Bool(false)
		}
		return value.Bool(rand.Int63n(denominator) < numerator)
	},
	"randombool_seeded": func(ctx *runtime.Context, a []value.Value) value.Value {
		seed := argInt(a, 2)
		r := rand.New(rand.NewSource(seed))
		numerator, denominator := argInt(a, 0), argInt(a, 1)
		if denominator <= 0 {
			return value.Bool(false)
		}
		return value.Bool(r.Int63n(denominator) < numerator)
	},
	"randomint": func(ctx *runtime.Context, a []value.Value) value.Value {
		lo, hi := argInt(a, 0), argInt(a, 1)
		if hi <= lo {
			return value.Integer(lo)
		}
		return value.Integer(lo + rand.Int63n(hi-lo+1))
	},
	"randomstr": func(ctx *runtime.Context, a []value.Value) value.Value {
		n := int(argInt(a, 0))
		charset := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		if len(a) > 1 && argStr(a, 1) != "" {
			charset = argStr(a, 1)
		}
		if n <= 0 {
			return value.String("")
		}
		b := make([]byte, n)
		for i := range b {
			b[i] = charset[rand.Intn(len(charset))]
		}
		return value.String(string(b))
	},
	"http_status_matches": func(ctx *runtime.Context, a []value.Value) value.Value {
		status := argStr(a, 0)
		for _, pattern := range strings.Split(argStr(a, 1), ",") {
			if statusMatches(strings.TrimSpace(pattern), status) {
				return value.Bool(true)
			}
		}
		return value.Bool(false)
	},
	"fastly.hash": func(ctx *runtime.Context, a []value.Value) value.Value {
		return digestFuncs["hash_xxh64"](ctx, a)
	},
	"fastly.try_select_shield": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String("")
	},

	// Fastly surfaces with no externally observable effect in this
	// implementation: accepted and no-op, per SPEC_FULL.md's supplemented
	// feature list.
	"resp.tarpit": func(ctx *runtime.Context, a []value.Value) value.Value { return value.Null() },
	"early_hints": func(ctx *runtime.Context, a []value.Value) value.Value { return value.Null() },
	"h2.push":     func(ctx *runtime.Context, a []value.Value) value.Value { return value.Null() },
	"h2.disable_header_compression": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Null()
	},
	"h3.alt_svc": func(ctx *runtime.Context, a []value.Value) value.Value { return value.String("") },
}

func substr(s string, offset, length int) string {
	n := len(s)
	if offset < 0 {
		offset = n + offset
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		return ""
	}
	end := n
	if length >= 0 {
		end = offset + length
	} else if length < -1 {
		end = n + length + 1
	}
	if end > n {
		end = n
	}
	if end < offset {
		return ""
	}
	return s[offset:end]
}

func regexReplace(subject, pattern, replacement string, all bool) value.Value {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return value.String(subject)
	}
	repl := convertBackrefs(replacement)
	if all {
		return value.String(re.ReplaceAllString(subject, repl))
	}
	loc := re.FindStringIndex(subject)
	if loc == nil {
		return value.String(subject)
	}
	replaced := re.ReplaceAllString(subject[loc[0]:loc[1]], repl)
	return value.String(subject[:loc[0]] + replaced + subject[loc[1]:])
}

// convertBackrefs turns VCL's "\1" backreference syntax into Go regexp's
// "${1}" replacement syntax.
func convertBackrefs(repl string) string {
	re := regexp.MustCompile(`\\(\d)`)
	return re.ReplaceAllString(repl, "$${$1}")
}

func urlEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-' || c == '_' || c == '.' || c == '~':
			b.WriteByte(c)
		case c == ' ':
			b.WriteString("%20")
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func urlDecode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%':
			if i+2 < len(s) {
				var n int
				if _, err := fmt.Sscanf(s[i+1:i+3], "%02X", &n); err == nil {
					b.WriteByte(byte(n))
					i += 2
					continue
				}
			}
			b.WriteByte('%')
		case '+':
			b.WriteByte(' ')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	return strings.Trim(string(b), `"`)
}

func cstrEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return r.Replace(s)
}

func statusMatches(pattern, status string) bool {
	if len(pattern) != len(status) {
		return false
	}
	for i := range pattern {
		if pattern[i] != 'x' && pattern[i] != status[i] {
			return false
		}
	}
	return true
}
