// Package boot drives the bootstrap sequence: the one-time submission of
// every bundled application to the process loader, in registry order.
package boot

import (
	"context"

	"github.com/microkern/bootpack/lib/registry"
)

// Request is a single process-creation request handed to the loader.
type Request struct {
	ID    string // correlation id for logs and metrics
	Index int    // position in registry iteration order
	Name  string
	Image registry.Image
}

// Loader consumes process-creation requests during bootstrap. What launching
// means is up to the implementation; the sequencer only cares whether the
// submission succeeded.
type Loader interface {
	CreateProcess(ctx context.Context, req Request) error
}
