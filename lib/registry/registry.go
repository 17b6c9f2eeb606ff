// Package registry exposes the applications bundled into a boot payload to
// early process creation. A registry is built once from a parsed payload and
// never mutated afterwards, so lookups need no synchronization.
package registry

import (
	"fmt"

	"github.com/microkern/bootpack/lib/payload"
)

// Image is one application image served by the registry. Bytes is a view
// into the payload artifact, not a copy; callers must treat it as read-only.
type Image struct {
	Offset uint64 // image start within the payload artifact
	Bytes  []byte
}

// Length returns the image size in bytes.
func (img Image) Length() int {
	return len(img.Bytes)
}

// Registry is the immutable name-to-image table consulted during bootstrap
// and by name-based lookups afterwards.
type Registry struct {
	p *payload.Payload
}

// New builds a registry over a parsed payload. Structural invariants (unique
// names, ordered non-overlapping boundaries) were already enforced by the
// payload parser, so construction cannot fail.
func New(p *payload.Payload) *Registry {
	return &Registry{p: p}
}

// FromBytes parses data as a payload artifact and wraps it in a registry.
func FromBytes(data []byte) (*Registry, error) {
	p, err := payload.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	return New(p), nil
}

// Count returns the number of registered applications.
func (r *Registry) Count() int {
	return r.p.Count()
}

// NameAt returns the name of the application at index i in declaration
// order.
func (r *Registry) NameAt(i int) (string, error) {
	if err := r.check(i); err != nil {
		return "", err
	}
	return r.p.Entries()[i].Name, nil
}

// ImageAt returns the image of the application at index i in declaration
// order.
func (r *Registry) ImageAt(i int) (Image, error) {
	if err := r.check(i); err != nil {
		return Image{}, err
	}
	return Image{
		Offset: r.p.Entries()[i].Start,
		Bytes:  r.p.Image(i),
	}, nil
}

// FindByName scans entries in declaration order and returns the index of the
// named application. The index is -1 when the name is not registered.
func (r *Registry) FindByName(name string) (int, bool) {
	for i, e := range r.p.Entries() {
		if e.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Names returns every registered name in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Count())
	for _, e := range r.p.Entries() {
		names = append(names, e.Name)
	}
	return names
}

func (r *Registry) check(i int) error {
	if i < 0 || i >= r.Count() {
		return fmt.Errorf("%w: index %d, registry holds %d applications", ErrIndexOutOfRange, i, r.Count())
	}
	return nil
}
