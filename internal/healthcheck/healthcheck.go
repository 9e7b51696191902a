// Package healthcheck advances backend health state one probe at a time,
// only when a caller invokes Tick (cmd/vclrun does not), rather than by a
// background goroutine per request, so the interpreter itself keeps the
// synchronous evaluation model of §5.
package healthcheck

import (
	"context"
	"net/http"
	"time"

	"vclcore/internal/obslog"
	"vclcore/internal/runtime"
)

// Prober issues one health check against a backend and reports success.
type Prober interface {
	Probe(ctx context.Context, backend *runtime.Backend) bool
}

// HTTPProber is the default Prober: a GET against backend.Probe.URL,
// judged healthy when the response status matches Probe.ExpectedStatus.
type HTTPProber struct {
	Client *http.Client
}

func (p HTTPProber) Probe(ctx context.Context, b *runtime.Backend) bool {
	if b.Probe == nil {
		return true
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	scheme := "http"
	if b.SSL {
		scheme = "https"
	}
	timeout := time.Duration(b.Probe.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, scheme+"://"+b.Host+":"+b.Port+b.Probe.URL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == b.Probe.ExpectedStatus
}

// Tick runs one probe round against every backend that declares a Probe,
// folding each outcome into that backend's health window.
func Tick(ctx context.Context, prober Prober, backends map[string]*runtime.Backend) {
	for _, b := range backends {
		if b.Probe == nil {
			continue
		}
		ok := prober.Probe(ctx, b)
		b.RecordProbe(ok)
		if !ok {
			obslog.Diagnostic("probe failed for backend %s", b.Name)
		}
	}
}
