// ABOUTME: One-slot playback guard
// ABOUTME: Serializes start and stop requests against a media element
package volume

import (
	"context"
	"sync"
)

// Phase is the state of the playback guard
type Phase int

const (
	// PhaseIdle means no start or stop request is outstanding
	PhaseIdle Phase = iota

	// PhaseStarting means a start request is in flight
	PhaseStarting

	// PhaseStopping means a stop request is in flight
	PhaseStopping
)

// String returns a human-readable label for the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// playbackGuard allows one outstanding request at a time.
// Transitions: Idle -> Starting -> Idle and Idle -> Stopping -> Idle.
type playbackGuard struct {
	mu      sync.Mutex
	phase   Phase
	settled chan struct{} // closed when the current request settles
}

// acquire waits for the slot to become idle and claims it for phase.
// The returned release must be called exactly once.
func (g *playbackGuard) acquire(ctx context.Context, phase Phase) (func(), error) {
	for {
		g.mu.Lock()
		if g.phase == PhaseIdle {
			g.phase = phase
			settled := make(chan struct{})
			g.settled = settled
			g.mu.Unlock()

			return func() {
				g.mu.Lock()
				g.phase = PhaseIdle
				g.settled = nil
				g.mu.Unlock()
				close(settled)
			}, nil
		}
		settled := g.settled
		g.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// current returns the guard's phase
func (g *playbackGuard) current() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}
