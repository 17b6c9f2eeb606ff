package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/nrednav/cuid2"

	"github.com/microkern/bootpack/lib/logger"
	"github.com/microkern/bootpack/lib/registry"
)

// Sequencer submits every registered application to the loader exactly once,
// in registry order. The first failure stops the sequence; nothing after the
// failing entry is submitted.
//
// A Sequencer is not safe for concurrent use. Bootstrap runs before any
// scheduling exists, so there is exactly one caller.
type Sequencer struct {
	reg       *registry.Registry
	loader    Loader
	phase     Phase
	submitted int
}

// NewSequencer creates a sequencer over the given registry and loader.
func NewSequencer(reg *registry.Registry, loader Loader) *Sequencer {
	return &Sequencer{
		reg:    reg,
		loader: loader,
		phase:  PhasePending,
	}
}

// Run executes the bootstrap sequence. It is single-shot: a sequencer that
// has already run, successfully or not, returns ErrAlreadyRun.
func (s *Sequencer) Run(ctx context.Context) error {
	if err := s.phase.CanTransitionTo(PhaseSubmitting); err != nil {
		return fmt.Errorf("%w: phase is %s", ErrAlreadyRun, s.phase)
	}
	s.phase = PhaseSubmitting

	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info("bootstrap starting", "applications", s.reg.Count())

	for i := 0; i < s.reg.Count(); i++ {
		if err := ctx.Err(); err != nil {
			s.phase = PhaseFailed
			BootMetrics.RecordSequence(ctx, start, s.submitted, err)
			return fmt.Errorf("bootstrap canceled before index %d: %w", i, err)
		}

		name, err := s.reg.NameAt(i)
		if err != nil {
			s.phase = PhaseFailed
			BootMetrics.RecordSequence(ctx, start, s.submitted, err)
			return fmt.Errorf("name at index %d: %w", i, err)
		}
		img, err := s.reg.ImageAt(i)
		if err != nil {
			s.phase = PhaseFailed
			BootMetrics.RecordSequence(ctx, start, s.submitted, err)
			return fmt.Errorf("image at index %d: %w", i, err)
		}

		req := Request{
			ID:    cuid2.Generate(),
			Index: i,
			Name:  name,
			Image: img,
		}
		log.Info("creating process",
			"request_id", req.ID,
			"name", name,
			"index", i,
			"size_bytes", img.Length(),
		)

		if err := s.loader.CreateProcess(ctx, req); err != nil {
			s.phase = PhaseFailed
			BootMetrics.RecordProcess(ctx, name, err)
			BootMetrics.RecordSequence(ctx, start, s.submitted, err)
			log.Error("process creation failed", "request_id", req.ID, "name", name, "error", err)
			return fmt.Errorf("create process %q (index %d): %w", name, i, err)
		}
		BootMetrics.RecordProcess(ctx, name, nil)
		s.submitted++
	}

	s.phase = PhaseComplete
	BootMetrics.RecordSequence(ctx, start, s.submitted, nil)
	log.Info("bootstrap complete", "submitted", s.submitted, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Phase returns the current lifecycle phase.
func (s *Sequencer) Phase() Phase {
	return s.phase
}

// Submitted returns how many applications have been handed to the loader
// successfully.
func (s *Sequencer) Submitted() int {
	return s.submitted
}
