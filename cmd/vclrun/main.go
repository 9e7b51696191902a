// vclrun parses a VCL file, runs it through the request-phase state machine
// of §4.1 against one synthetic request, and prints the terminal action and
// response state reached. It exists so the interpreter is drivable end to
// end from VCL source text, the way the E1-E7 scenarios assume, rather than
// only from hand-built ASTs in tests.
package main

import (
	"flag"
	"fmt"
	"os"

	"vclcore/internal/analysis"
	"vclcore/internal/interp"
	"vclcore/internal/metrics"
	"vclcore/internal/obslog"
	"vclcore/internal/runtime"
	"vclcore/internal/syntax"
	"vclcore/internal/value"
)

var appVersion = "dev"

func main() {
	var (
		showVersion bool
		logLevel    string
		metricsAddr string
		method      string
		url         string
		clientIP    string
	)

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&logLevel, "log-level", "warning", "log level: debug, info, warning, error")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
	flag.StringVar(&method, "method", "GET", "synthetic request method")
	flag.StringVar(&url, "url", "/", "synthetic request URL")
	flag.StringVar(&clientIP, "client-ip", "127.0.0.1", "synthetic client IP")
	flag.Parse()

	if showVersion {
		fmt.Printf("vclrun %s\n", appVersion)
		os.Exit(0)
	}

	obslog.Configure(logLevel)
	if metricsAddr != "" {
		metrics.Serve(metricsAddr)
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vclrun [flags] <file.vcl>")
		os.Exit(2)
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "vclrun: %v\n", err)
		os.Exit(1)
	}

	prog, parseDiags := syntax.Parse(string(src))
	for _, d := range parseDiags {
		fmt.Fprintf(os.Stderr, "parse: %s\n", d)
	}

	for _, d := range analysis.Analyze(prog) {
		fmt.Fprintf(os.Stderr, "analysis: %s\n", d.Message)
	}

	c := interp.Compile(prog)
	for _, d := range c.Diagnostics {
		fmt.Fprintf(os.Stderr, "compile: %s\n", d)
	}

	ctx := c.NewContext()
	ctx.ClientIP = clientIP
	ctx.Req.Set("method", value.String(method))
	ctx.Req.Set("url", value.String(url))

	action, final := run(c, ctx)
	fmt.Printf("action=%s\n", action)
	fmt.Printf("resp.status=%s\n", final.Resp.Get("status").AsString())
	fmt.Printf("beresp.ttl=%s\n", final.Beresp.Get("ttl").AsString())
}

// run drives ctx through the phase state machine of §4.1 until a terminal
// action is reached or the restart budget is exhausted, mirroring the
// control flow a real cache server's dispatcher implements around the
// compiled subroutines.
func run(c *interp.Compiled, ctx *runtime.Context) (string, *runtime.Context) {
	for {
		action := interp.Execute(c, "vcl_recv", ctx)
		switch action {
		case "lookup":
			interp.Execute(c, "vcl_hash", ctx)
			action = interp.Execute(c, "vcl_miss", ctx)
		case "pipe":
			return interp.Execute(c, "vcl_pipe", ctx), ctx
		case "error":
			return interp.Execute(c, "vcl_error", ctx), ctx
		case "restart":
			if !bumpRestart(ctx) {
				return "error", ctx
			}
			continue
		}

		switch action {
		case "fetch", "pass", "deliver_stale":
			action = interp.Execute(c, "vcl_fetch", ctx)
		}

		switch action {
		case "error":
			return interp.Execute(c, "vcl_error", ctx), ctx
		case "restart":
			if !bumpRestart(ctx) {
				return "error", ctx
			}
			continue
		case "hit_for_pass", "deliver_stale":
			action = "deliver"
		}

		final := interp.Execute(c, "vcl_deliver", ctx)
		if final == "restart" {
			if !bumpRestart(ctx) {
				return "error", ctx
			}
			continue
		}
		return final, ctx
	}
}

func bumpRestart(ctx *runtime.Context) bool {
	if ctx.Restarts >= runtime.MaxRestarts {
		return false
	}
	ctx.Restarts++
	ctx.Req.Set("restarts", value.Integer(int64(ctx.Restarts)))
	return true
}
