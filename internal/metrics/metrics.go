// Package metrics exposes Prometheus counters for interpreter-level events.
// This is ambient observability, not a spec.md module: it exists so an
// operator running cmd/vclrun with -metrics-addr can see restart storms,
// subroutine error rates and standard-library call volume, mirroring how
// etalazz-vsa's internal/ratelimiter/telemetry/churn/prom_counters.go
// instruments its hot path with global, label-bounded Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	restartsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vcl_restarts_total",
		Help: "Total number of restart actions executed across all requests.",
	})
	subroutineErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vcl_subroutine_errors_total",
		Help: "Total number of subroutine invocations that ended via the error boundary, by phase.",
	}, []string{"phase"})
	stdlibCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vcl_stdlib_calls_total",
		Help: "Total standard-library function calls dispatched, by module prefix.",
	}, []string{"module"})
	aclLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vcl_acl_lookups_total",
		Help: "Total ACL membership tests performed, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(restartsTotal, subroutineErrorsTotal, stdlibCallsTotal, aclLookupsTotal)
}

// Restart records one restart action.
func Restart() { restartsTotal.Inc() }

// SubroutineError records one phase ending via the error boundary.
func SubroutineError(phase string) { subroutineErrorsTotal.WithLabelValues(phase).Inc() }

// StdlibCall records one dispatched standard-library call.
func StdlibCall(module string) { stdlibCallsTotal.WithLabelValues(module).Inc() }

// ACLLookup records one ACL membership test outcome ("match" or "miss").
func ACLLookup(matched bool) {
	result := "miss"
	if matched {
		result = "match"
	}
	aclLookupsTotal.WithLabelValues(result).Inc()
}

// Serve exposes /metrics on addr in a background goroutine, mirroring
// churn.startMetricsEndpoint's minimal dedicated-server approach.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.ListenAndServe()
	}()
}
