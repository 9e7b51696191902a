package director

import (
	"testing"

	"vclcore/internal/runtime"
)

func backends(healthy ...string) map[string]*runtime.Backend {
	all := map[string]*runtime.Backend{
		"a": {Name: "a"},
		"b": {Name: "b"},
		"c": {Name: "c"},
	}
	for _, name := range healthy {
		all[name].IsHealthy = true
	}
	return all
}

func TestPickReturnsFalseWithNoHealthyMembers(t *testing.T) {
	d := &runtime.Director{Type: runtime.DirectorRandom, Members: []runtime.Member{{Backend: "a", Weight: 1}}}
	_, ok := Pick(d, backends(), "key")
	if ok {
		t.Error("expected Pick to fail when no member is healthy")
	}
}

func TestPickFallbackAlwaysReturnsFirstHealthy(t *testing.T) {
	d := &runtime.Director{
		Type: runtime.DirectorFallback,
		Members: []runtime.Member{
			{Backend: "a", Weight: 1},
			{Backend: "b", Weight: 1},
		},
	}
	got, ok := Pick(d, backends("b"), "irrelevant")
	if !ok || got != "b" {
		t.Errorf("expected fallback to pick the first healthy member (b), got %q ok=%v", got, ok)
	}
}

func TestPickHashIsDeterministicForSameKey(t *testing.T) {
	d := &runtime.Director{
		Type: runtime.DirectorHash,
		Members: []runtime.Member{
			{Backend: "a", Weight: 1},
			{Backend: "b", Weight: 1},
			{Backend: "c", Weight: 1},
		},
	}
	bs := backends("a", "b", "c")
	first, ok := Pick(d, bs, "same-client-ip")
	if !ok {
		t.Fatal("expected a pick")
	}
	for i := 0; i < 10; i++ {
		got, _ := Pick(d, bs, "same-client-ip")
		if got != first {
			t.Fatalf("hash director must be deterministic for a fixed key and membership, got %q then %q", first, got)
		}
	}
}

func TestPickClientBehavesLikeHash(t *testing.T) {
	d := &runtime.Director{
		Type: runtime.DirectorClient,
		Members: []runtime.Member{
			{Backend: "a", Weight: 1},
			{Backend: "b", Weight: 1},
		},
	}
	bs := backends("a", "b")
	got1, _ := Pick(d, bs, "10.0.0.1")
	got2, _ := Pick(d, bs, "10.0.0.1")
	if got1 != got2 {
		t.Error("client director must route the same key to the same backend")
	}
}

func TestPickChashOnlyReshufflesRemovedMembersTraffic(t *testing.T) {
	d := &runtime.Director{
		Type: runtime.DirectorChash,
		Members: []runtime.Member{
			{Backend: "a", Weight: 1},
			{Backend: "b", Weight: 1},
			{Backend: "c", Weight: 1},
		},
	}
	full := backends("a", "b", "c")
	before, ok := Pick(d, full, "sticky-key")
	if !ok {
		t.Fatal("expected a pick with all members healthy")
	}

	withoutOne := backends("a", "b", "c")
	for name, b := range withoutOne {
		if name == before {
			b.IsHealthy = false
		}
	}
	after, ok := Pick(d, withoutOne, "sticky-key")
	if !ok {
		t.Fatal("expected a pick after removing one member")
	}
	if after == before {
		t.Error("removing the previously-picked backend should change the pick for this key")
	}
}

func TestPickQuorumNotMetFails(t *testing.T) {
	d := &runtime.Director{
		Type:    runtime.DirectorRandom,
		Quorum:  75,
		Members: []runtime.Member{{Backend: "a", Weight: 1}, {Backend: "b", Weight: 1}, {Backend: "c", Weight: 1}},
	}
	_, ok := Pick(d, backends("a"), "key")
	if ok {
		t.Error("expected quorum of 75%% to fail with only 1 of 3 members healthy")
	}
}

func TestPickQuorumMetSucceeds(t *testing.T) {
	d := &runtime.Director{
		Type:    runtime.DirectorRandom,
		Quorum:  50,
		Members: []runtime.Member{{Backend: "a", Weight: 1}, {Backend: "b", Weight: 1}},
	}
	_, ok := Pick(d, backends("a", "b"), "key")
	if !ok {
		t.Error("expected quorum of 50%% to pass with 2 of 2 members healthy")
	}
}

func TestPickRandomOnlyReturnsHealthyMembers(t *testing.T) {
	d := &runtime.Director{
		Type: runtime.DirectorRandom,
		Members: []runtime.Member{
			{Backend: "a", Weight: 1},
			{Backend: "b", Weight: 1},
			{Backend: "c", Weight: 1},
		},
	}
	bs := backends("b")
	for i := 0; i < 20; i++ {
		got, ok := Pick(d, bs, "")
		if !ok || got != "b" {
			t.Fatalf("expected only the healthy member b to ever be picked, got %q ok=%v", got, ok)
		}
	}
}
