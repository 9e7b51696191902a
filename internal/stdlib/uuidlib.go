// uuidlib.go implements uuid.* (§6.2), backed by github.com/google/uuid —
// promoted from the teacher's indirect dependency set.
package stdlib

import (
	"github.com/google/uuid"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var uuidFuncs = map[string]fn{
	"version4": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(uuid.New().String())
	},
	"version3": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(uuid.NewMD5(uuid.NameSpaceDNS, []byte(argStr(a, 0))).String())
	},
	"version5": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(argStr(a, 0))).String())
	},
	"is_valid": func(ctx *runtime.Context, a []value.Value) value.Value {
		_, err := uuid.Parse(argStr(a, 0))
		return value.Bool(err == nil)
	},
	"dns": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(uuid.NameSpaceDNS.String())
	},
	"url": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.String(uuid.NameSpaceURL.String())
	},
}
