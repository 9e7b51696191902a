// Package value implements the VCL typed value domain (§3 ValueTypes &
// Coercion): a tagged sum over STRING, INTEGER, FLOAT, BOOL, TIME, RTIME,
// IP, REGEX and BACKEND, with explicit coercion rules. Coercion is never
// implicit dispatch on a runtime object's shape — every conversion here is a
// named function.
package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBool
	KindTime
	KindRTime
	KindIP
	KindRegex
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "STRING"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindBool:
		return "BOOL"
	case KindTime:
		return "TIME"
	case KindRTime:
		return "RTIME"
	case KindIP:
		return "IP"
	case KindRegex:
		return "REGEX"
	case KindBackend:
		return "BACKEND"
	default:
		return "NULL"
	}
}

// Value is the tagged union. Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	// Time holds TIME as whole seconds since epoch, or RTIME as milliseconds,
	// depending on Kind (§3.6: TTL-bearing fields are stored as integer
	// seconds; RTIME is milliseconds-with-suffix per §6.5).
	Time  int64
	IP    string
	Regex *regexp.Regexp
}

func Null() Value                 { return Value{Kind: KindNull} }
func String(s string) Value       { return Value{Kind: KindString, Str: s} }
func Integer(i int64) Value       { return Value{Kind: KindInteger, Int: i} }
func Float(f float64) Value       { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value           { return Value{Kind: KindBool, Bool: b} }
func Time(seconds int64) Value    { return Value{Kind: KindTime, Time: seconds} }
func RTime(millis int64) Value    { return Value{Kind: KindRTime, Time: millis} }
func IP(s string) Value           { return Value{Kind: KindIP, IP: s} }
func Backend(name string) Value   { return Value{Kind: KindBackend, Str: name} }
func Regex(re *regexp.Regexp) Value {
	return Value{Kind: KindRegex, Regex: re}
}

// IsNull reports whether v is the absent/null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Truthy implements VCL's truthy semantics: non-empty string, non-zero
// number or time, true bool, non-empty IP or backend, and any REGEX are
// true; everything else (including Null) is false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str != ""
	case KindInteger:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindTime, KindRTime:
		return v.Time != 0
	case KindIP, KindBackend:
		return v.Str != "" || v.IP != ""
	case KindNull:
		return false
	default:
		return true
	}
}

// AsString coerces v to its VCL string representation.
func (v Value) AsString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindTime, KindRTime:
		return strconv.FormatInt(v.Time, 10)
	case KindIP:
		return v.IP
	case KindBackend:
		return v.Str
	case KindRegex:
		if v.Regex != nil {
			return v.Regex.String()
		}
		return ""
	default:
		return ""
	}
}

// AsFloat coerces v to a float64. Non-numeric strings coerce to NaN-as-zero
// per §4.3 ("implicit string→number coercion (NaN→0)").
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindFloat:
		return v.Float
	case KindInteger:
		return float64(v.Int)
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindTime, KindRTime:
		return float64(v.Time)
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsInt coerces v to an int64, truncating any fractional part.
func (v Value) AsInt() int64 {
	if v.Kind == KindInteger {
		return v.Int
	}
	return int64(v.AsFloat())
}

// Equal implements VCL's "==" strict equality on evaluated values: values are
// compared after coercion to a common representation, never by raw Go type
// punning across Kind (§4.3).
func Equal(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == b.Kind
	}
	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		return a.AsFloat() == b.AsFloat()
	}
	if a.Kind == KindBool || b.Kind == KindBool {
		return a.Truthy() == b.Truthy()
	}
	return a.AsString() == b.AsString()
}

func isNumeric(k Kind) bool {
	switch k {
	case KindInteger, KindFloat, KindTime, KindRTime:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.Kind, v.AsString())
}
