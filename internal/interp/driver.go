// driver.go implements the top-level entrypoint (§4.5, §5): invoking a
// named phase subroutine against a Context, resetting per-invocation state
// (regex capture groups, goto hop counter) before each entry.
package interp

import (
	"vclcore/internal/runtime"
	"vclcore/internal/value"
)

// Execute runs the subroutine named phase against ctx and returns the
// canonical action it terminates with. Unknown phase names and phases with
// no user-supplied subroutine fall back to the phase's default action,
// matching real VCL's implicit built-in subroutines (§4.1).
func Execute(c *Compiled, phase string, ctx *runtime.Context) string {
	ctx.ResetGroups()
	f, ok := c.Subs[phase]
	if !ok {
		return defaultActionFor(phase)
	}
	return f(ctx).Action
}

// ExecuteValue runs a functional subroutine (one declared with a return
// type) and returns its value rather than a canonical action.
func ExecuteValue(c *Compiled, name string, ctx *runtime.Context) (value.Value, bool) {
	f, exists := c.Subs[name]
	if !exists {
		return value.Null(), false
	}
	ctx.ResetGroups()
	return f(ctx).Value, true
}
