package interp

import (
	"fmt"

	"vclcore/internal/obslog"
)

func formatf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// fatalStmtError is panicked by statement execution for conditions §7 marks
// "fatal within the statement" (division/modulo by zero on a compound
// assignment, restart past MAX_RESTARTS). The subroutine compiler's closure
// recovers it at the boundary and translates it into the per-phase error
// action, per §4.1 and §7's propagation policy.
type fatalStmtError struct{ msg string }

func (e fatalStmtError) Error() string { return e.msg }

func raiseFatal(format string, args ...any) {
	obslog.Fatal(format, args...)
	panic(fatalStmtError{msg: formatf(format, args...)})
}
