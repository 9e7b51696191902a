// Package obslog wraps github.com/tliron/commonlog the same way the teacher
// repo's internal/server.configureLogging does, so the interpreter and both
// cmd/ binaries share one logging sink and verbosity knob instead of each
// rolling its own.
package obslog

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("vcl")

// Verbosity mirrors commonlog's scale: 1=Error, 2=Warning, 3=Notice,
// 4=Info, 5=Debug.
func Configure(level string) {
	verbosity := 2
	switch level {
	case "debug":
		verbosity = 5
	case "info":
		verbosity = 4
	case "notice":
		verbosity = 3
	case "warning", "warn":
		verbosity = 2
	case "error":
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
}

// Diagnostic logs a non-fatal interpreter condition: invalid regex, unknown
// identifier/function, bad ACL entry (§7 "Error kinds" that continue
// execution with a safe default).
func Diagnostic(format string, args ...any) {
	log.Warningf(format, args...)
}

// Fatal logs a statement-level error that the subroutine boundary will turn
// into a phase error action (§7: division by zero, max restarts exceeded).
func Fatal(format string, args ...any) {
	log.Errorf(format, args...)
}

// Trace logs std.log output and other VCL-program-emitted diagnostics.
func Trace(format string, args ...any) {
	log.Infof(format, args...)
}
