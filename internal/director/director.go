// Package director implements backend selection for the director types
// named in §3.5: random, hash, client (a keyed alias of hash), fallback,
// and chash (weighted rendezvous hashing). Selection only ever looks at
// runtime.Backend.IsHealthy; nothing here issues network I/O.
package director

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"vclcore/internal/runtime"
)

// Pick selects one member backend's name from d, or returns false if no
// healthy member exists or the configured quorum isn't met. key is the
// selection key used by the hash/client/chash policies (client IP, a
// request hash, whatever the calling VCL computed); random and fallback
// ignore it.
func Pick(d *runtime.Director, backends map[string]*runtime.Backend, key string) (string, bool) {
	healthy := healthyMembers(d, backends)
	if len(healthy) == 0 {
		return "", false
	}
	if d.Quorum > 0 && !quorumMet(d, backends) {
		return "", false
	}
	switch d.Type {
	case runtime.DirectorFallback:
		return healthy[0].Backend, true
	case runtime.DirectorHash, runtime.DirectorClient:
		return pickHash(healthy, key), true
	case runtime.DirectorChash:
		return pickChash(healthy, key), true
	default: // runtime.DirectorRandom and anything unrecognized
		return pickRandom(healthy), true
	}
}

func healthyMembers(d *runtime.Director, backends map[string]*runtime.Backend) []runtime.Member {
	var out []runtime.Member
	for _, m := range d.Members {
		if b, ok := backends[m.Backend]; ok && b.IsHealthy {
			out = append(out, m)
		}
	}
	return out
}

// quorumMet implements §3.5's director.quorum: the percentage of a
// director's TOTAL membership (not just its healthy subset) that must be
// healthy before the director will route at all.
func quorumMet(d *runtime.Director, backends map[string]*runtime.Backend) bool {
	if len(d.Members) == 0 {
		return false
	}
	healthy := 0
	for _, m := range d.Members {
		if b, ok := backends[m.Backend]; ok && b.IsHealthy {
			healthy++
		}
	}
	return healthy*100 >= d.Quorum*len(d.Members)
}

func totalWeight(members []runtime.Member) int {
	total := 0
	for _, m := range members {
		w := m.Weight
		if w <= 0 {
			w = 1
		}
		total += w
	}
	return total
}

func pickRandom(members []runtime.Member) string {
	total := totalWeight(members)
	r := rand.Intn(total)
	for _, m := range members {
		w := m.Weight
		if w <= 0 {
			w = 1
		}
		if r < w {
			return m.Backend
		}
		r -= w
	}
	return members[len(members)-1].Backend
}

// pickHash deterministically maps key into the weighted member range via
// xxhash, giving the same backend for the same key as long as membership
// doesn't change (§3.5's "hash" and "client" director types).
func pickHash(members []runtime.Member, key string) string {
	total := totalWeight(members)
	if total == 0 {
		return members[0].Backend
	}
	h := xxhash.Sum64String(key)
	r := int(h % uint64(total))
	for _, m := range members {
		w := m.Weight
		if w <= 0 {
			w = 1
		}
		if r < w {
			return m.Backend
		}
		r -= w
	}
	return members[len(members)-1].Backend
}

// pickChash implements weighted rendezvous (highest-random-weight) hashing:
// each member scores xxhash(key + backend-name), scaled by its weight, and
// the highest score wins. Unlike pickHash's range-bucket scheme, removing
// one member only reshuffles that member's traffic, not the whole ring.
func pickChash(members []runtime.Member, key string) string {
	best := members[0].Backend
	var bestScore float64 = -1
	for _, m := range members {
		w := m.Weight
		if w <= 0 {
			w = 1
		}
		h := xxhash.Sum64String(key + "\x00" + m.Backend)
		score := float64(h) * float64(w)
		if score > bestScore {
			bestScore = score
			best = m.Backend
		}
	}
	return best
}
