package boot

import "fmt"

// Phase tracks where a bootstrap sequence is in its lifecycle.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseSubmitting Phase = "submitting"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// ValidTransitions defines allowed single-hop phase transitions. A sequence
// runs at most once, so both end phases are terminal.
var ValidTransitions = map[Phase][]Phase{
	PhasePending: {
		PhaseSubmitting, // Run called
	},
	PhaseSubmitting: {
		PhaseComplete, // every application submitted
		PhaseFailed,   // submission or cancellation stopped the sequence
	},
	PhaseComplete: {},
	PhaseFailed:   {},
}

// CanTransitionTo checks if a transition from the current phase to the
// target phase is valid.
func (p Phase) CanTransitionTo(target Phase) error {
	allowed, ok := ValidTransitions[p]
	if !ok {
		return fmt.Errorf("%w: unknown phase: %s", ErrInvalidPhase, p)
	}

	for _, valid := range allowed {
		if valid == target {
			return nil
		}
	}

	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidPhase, p, target)
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsTerminal returns true once the sequence can no longer make progress.
func (p Phase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}
