package healthcheck

import (
	"context"
	"testing"

	"vclcore/internal/runtime"
)

type fakeProber struct {
	result bool
}

func (f fakeProber) Probe(ctx context.Context, b *runtime.Backend) bool {
	return f.result
}

func backendWithProbe(threshold int) *runtime.Backend {
	return &runtime.Backend{
		Name:      "b1",
		IsHealthy: true,
		Probe:     &runtime.Probe{Threshold: threshold},
	}
}

func TestTickSkipsBackendsWithoutProbe(t *testing.T) {
	b := &runtime.Backend{Name: "no-probe", IsHealthy: true}
	Tick(context.Background(), fakeProber{result: false}, map[string]*runtime.Backend{"b": b})
	if !b.IsHealthy {
		t.Error("a backend with no Probe configured must never be marked unhealthy")
	}
}

func TestTickFlipsHealthyToUnhealthyAfterThreshold(t *testing.T) {
	b := backendWithProbe(2)
	backends := map[string]*runtime.Backend{"b1": b}

	Tick(context.Background(), fakeProber{result: false}, backends)
	if !b.IsHealthy {
		t.Fatal("one failing probe below threshold must not flip health yet")
	}

	Tick(context.Background(), fakeProber{result: false}, backends)
	if b.IsHealthy {
		t.Error("threshold consecutive failing probes must flip the backend unhealthy")
	}
}

func TestRecordProbeResetsCounterOnAgreeingOutcome(t *testing.T) {
	b := backendWithProbe(3)
	b.RecordProbe(false)
	b.RecordProbe(true) // agrees with current IsHealthy=true, resets the counter
	b.RecordProbe(false)
	if !b.IsHealthy {
		t.Error("the counter reset should mean a single subsequent failure isn't enough to flip health")
	}
}

func TestRecordProbeNoOpWithoutProbeConfigured(t *testing.T) {
	b := &runtime.Backend{Name: "x", IsHealthy: true}
	b.RecordProbe(false)
	if !b.IsHealthy {
		t.Error("RecordProbe must be a no-op when the backend has no Probe config")
	}
}
