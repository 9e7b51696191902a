// binlib.go implements bin.* (§6.2): binary-string helpers operating on hex
// and binary textual encodings.
package stdlib

import (
	"encoding/hex"
	"strconv"
	"strings"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var binFuncs = map[string]fn{
	"hex_to_bin": func(ctx *runtime.Context, a []value.Value) value.Value {
		b, err := hex.DecodeString(argStr(a, 0))
		if err != nil {
			return value.String("")
		}
		return value.String(string(b))
	},
	"bin_to_hex": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(hex.EncodeToString([]byte(argStr(a, 0))))
	},
	"bitwise_and": func(ctx *runtime.Context, a []value.Value) value.Value {
		return bitwiseOp(argStr(a, 0), argStr(a, 1), func(x, y byte) byte { return x & y })
	},
	"bitwise_or": func(ctx *runtime.Context, a []value.Value) value.Value {
		return bitwiseOp(argStr(a, 0), argStr(a, 1), func(x, y byte) byte { return x | y })
	},
	"bitwise_xor": func(ctx *runtime.Context, a []value.Value) value.Value {
		return bitwiseOp(argStr(a, 0), argStr(a, 1), func(x, y byte) byte { return x ^ y })
	},
	"to_hex_string": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(strconv.FormatInt(argInt(a, 0), 16))
	},
}

func bitwiseOp(a, b string, op func(x, y byte) byte) value.Value {
	da, err1 := hex.DecodeString(a)
	db, err2 := hex.DecodeString(b)
	if err1 != nil || err2 != nil || len(da) != len(db) {
		return value.String("")
	}
	out := make([]byte, len(da))
	for i := range da {
		out[i] = op(da[i], db[i])
	}
	return value.String(strings.ToLower(hex.EncodeToString(out)))
}
