package stdlib

import (
	"math"

	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

var mathFuncs = map[string]fn{
	"pow": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Pow(argFloat(a, 0), argFloat(a, 1)))
	},
	"sqrt": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Sqrt(argFloat(a, 0)))
	},
	"floor": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Floor(argFloat(a, 0)))
	},
	"ceil": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Ceil(argFloat(a, 0)))
	},
	"round": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Round(argFloat(a, 0)))
	},
	"abs": func(ctx *runtime.Context, a []value.Value) value.Value {
		v := arg(a, 0)
		if v.Kind == value.KindInteger {
			n := v.Int
			if n < 0 {
				n = -n
			}
			return value.Integer(n)
		}
		return value.Float(math.Abs(argFloat(a, 0)))
	},
	"min": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Min(argFloat(a, 0), argFloat(a, 1)))
	},
	"max": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Max(argFloat(a, 0), argFloat(a, 1)))
	},
	"log": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Log(argFloat(a, 0)))
	},
	"log2": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Log2(argFloat(a, 0)))
	},
	"log10": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Float(math.Log10(argFloat(a, 0)))
	},
	"is_nan": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Bool(math.IsNaN(argFloat(a, 0)))
	},
	"is_infinite": func(ctx *runtime.Context, a []value.Value) value.Value {
		return value.Bool(math.IsInf(argFloat(a, 0), 0))
	},
}
