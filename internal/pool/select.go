package pool

import (
	"fmt"
	"math/rand/v2"

	"hdxmix/internal/mixerr"
)

// Plan is the ordered list of pool entries a run will process.
type Plan struct {
	Tracks   []string
	Warnings []mixerr.Warning
}

// Paths resolves the planned names to file paths.
func (pl Plan) Paths(p *Pool) []string {
	out := make([]string, len(pl.Tracks))
	for i, name := range pl.Tracks {
		out[i] = p.Path(name)
	}
	return out
}

// Policy decides which pool entries are used, and in which order.
type Policy interface {
	Resolve(p *Pool, rng *rand.Rand) (Plan, error)
}

// RandomSample draws N distinct tracks uniformly without replacement.
type RandomSample struct {
	N int
}

// Resolve fails with ErrInvalidCount for N <= 0; N == 0 also matches
// ErrEmptySelection. N larger than the pool is clamped with a warning.
// A nil rng uses the global source.
func (rs RandomSample) Resolve(p *Pool, rng *rand.Rand) (Plan, error) {
	if rs.N == 0 {
		return Plan{}, fmt.Errorf("%w: %w", mixerr.ErrInvalidCount, mixerr.ErrEmptySelection)
	}
	if rs.N < 0 {
		return Plan{}, fmt.Errorf("%w: got %d", mixerr.ErrInvalidCount, rs.N)
	}
	if p.Len() == 0 {
		return Plan{}, mixerr.ErrEmptyPool
	}

	var plan Plan
	n := rs.N
	if n > p.Len() {
		plan.Warnings = append(plan.Warnings, mixerr.Warnf(mixerr.CountClamped,
			"requested %d tracks but only %d available, using all of them", n, p.Len()))
		n = p.Len()
	}

	perm := func(k int) []int { return rand.Perm(k) }
	if rng != nil {
		perm = rng.Perm
	}
	names := p.Names()
	for _, i := range perm(len(names))[:n] {
		plan.Tracks = append(plan.Tracks, names[i])
	}
	return plan, nil
}

// ExplicitOrder uses exactly the given names, in the given order. Repeats are
// kept; keeping them out is up to the caller.
type ExplicitOrder struct {
	Names []string
}

func (eo ExplicitOrder) Resolve(p *Pool, _ *rand.Rand) (Plan, error) {
	if len(eo.Names) == 0 {
		return Plan{}, mixerr.ErrEmptySelection
	}
	if p.Len() == 0 {
		return Plan{}, mixerr.ErrEmptyPool
	}
	tracks := make([]string, len(eo.Names))
	for i, name := range eo.Names {
		if !p.Contains(name) {
			return Plan{}, fmt.Errorf("%w: %s", mixerr.ErrUnknownTrack, name)
		}
		tracks[i] = name
	}
	return Plan{Tracks: tracks}, nil
}
