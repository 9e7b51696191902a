// ratelimitlib.go implements ratelimit.* (§6.2): penaltybox membership and
// ratecounter bucket bookkeeping. Time advances via the wall clock at call
// time rather than a simulated tick, since rate limiting is inherently
// wall-clock-relative.
package stdlib

import (
	"time"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var ratelimitFuncs = map[string]fn{
	"penaltybox_add": func(ctx *runtime.Context, a []value.Value) value.Value {
		box := resolvePenaltybox(ctx, argStr(a, 0))
		if box == nil {
			return value.Null()
		}
		ttl := value.ParseMillis(argStr(a, 2))
		box.Add(argStr(a, 1), time.Now().Add(time.Duration(ttl)*time.Millisecond).UnixNano())
		return value.Null()
	},
	"penaltybox_has": func(ctx *runtime.Context, a []value.Value) value.Value {
		box := resolvePenaltybox(ctx, argStr(a, 0))
		if box == nil {
			return value.Bool(false)
		}
		return value.Bool(box.Has(argStr(a, 1), time.Now().UnixNano()))
	},
	"ratecounter_increment": func(ctx *runtime.Context, a []value.Value) value.Value {
		rc := resolveRatecounter(ctx, argStr(a, 0))
		if rc == nil {
			return value.Integer(0)
		}
		rc.Increment(argStr(a, 1), time.Now().Unix())
		return value.Integer(1)
	},
	"check_rate": func(ctx *runtime.Context, a []value.Value) value.Value {
		rc := resolveRatecounter(ctx, argStr(a, 0))
		if rc == nil {
			return value.Bool(false)
		}
		entry := argStr(a, 1)
		rc.Increment(entry, time.Now().Unix())
		window := argInt(a, 2)
		limit := argInt(a, 3)
		return value.Bool(rc.Count(entry, time.Now().Unix(), window) > limit)
	},
}

func resolvePenaltybox(ctx *runtime.Context, name string) *runtime.Penaltybox {
	return ctx.Penaltyboxes[name]
}

func resolveRatecounter(ctx *runtime.Context, name string) *runtime.Ratecounter {
	return ctx.Ratecounters[name]
}
