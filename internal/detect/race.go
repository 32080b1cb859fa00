package detect

import (
	"context"
)

// Race probes every candidate concurrently and returns the first one that
// succeeds, cancelling the rest. The second return is false when every
// candidate failed (a normal outcome, not an error).
//
// Wall-clock time is bounded by the fastest successful probe, not by the sum
// of candidate timeouts: a slow failing candidate never delays a fast
// success. When two probes succeed near-simultaneously the winner is
// whichever outcome the scheduler delivers first; callers must not rely on
// any particular tie-break.
//
// Cancellation of losers is cooperative: a cancelled probe may still finish
// its network call in the background, but its outcome lands in a buffered
// channel and is discarded. Race never blocks on stragglers and leaks no
// goroutines.
func Race(ctx context.Context, candidates []string, probe ProbeFunc) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so stragglers can always deliver and exit.
	outcomes := make(chan Outcome, len(candidates))
	for _, c := range candidates {
		go func(candidate string) {
			outcomes <- probe(raceCtx, candidate)
		}(c)
	}

	for i := 0; i < len(candidates); i++ {
		select {
		case out := <-outcomes:
			if out.OK {
				cancel()
				return out.Candidate, true
			}
		case <-ctx.Done():
			return "", false
		}
	}
	return "", false
}
