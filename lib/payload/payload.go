// Package payload implements the bootpack artifact format: a single
// self-describing blob that carries the user application images a kernel
// build embeds and serves to early process creation.
//
// Layout, all integers little-endian:
//
//	0x00  magic    [8]byte  "BOOTPACK"
//	0x08  version  uint32   format version, currently 1
//	0x0c  count    uint32   number of applications
//	0x10  nameOff  uint64   offset of the name table
//	0x18  nameLen  uint64   length of the name table in bytes
//	0x20  entries  count * {start uint64, end uint64}
//	 ...  names    count NUL-terminated names, entry order
//	 ...  images   raw image bytes, entry order, aligned starts
//
// Image boundaries are half-open [start, end) offsets into the artifact
// itself, so a parsed payload hands out zero-copy views. The entry order is
// the build declaration order and is the iteration order consumers see.
package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// FormatVersion is the artifact version this package reads and writes.
	FormatVersion = 1

	// MinAlignment is the smallest image alignment a payload may use. Every
	// image start sits on at least this boundary.
	MinAlignment = 8

	// MaxNameLength bounds application names. Names are stored
	// NUL-terminated, so NUL itself can never appear in one.
	MaxNameLength = 255

	headerSize = 32
	entrySize  = 16
)

var magic = [8]byte{'B', 'O', 'O', 'T', 'P', 'A', 'C', 'K'}

// Entry describes one application image inside a payload.
type Entry struct {
	Name  string
	Start uint64 // offset of the first image byte within the artifact
	End   uint64 // offset one past the last image byte
}

// Length returns the image size in bytes.
func (e Entry) Length() uint64 {
	return e.End - e.Start
}

// Payload is a parsed artifact. It aliases the raw bytes it was parsed from
// and serves entry metadata and zero-copy image views.
type Payload struct {
	data    []byte
	entries []Entry
}

// Count returns the number of applications in the payload.
func (p *Payload) Count() int {
	return len(p.entries)
}

// Entries returns the entry table in declaration order. Callers must not
// modify the returned slice.
func (p *Payload) Entries() []Entry {
	return p.entries
}

// Image returns a read-only view of the i-th image. The index must be in
// range; the registry layer is the bounds-checking surface.
func (p *Payload) Image(i int) []byte {
	e := p.entries[i]
	return p.data[e.Start:e.End:e.End]
}

// Bytes returns the raw artifact the payload was parsed from.
func (p *Payload) Bytes() []byte {
	return p.data
}

// Digest returns the hex-encoded SHA-256 of the whole artifact.
func (p *Payload) Digest() string {
	sum := sha256.Sum256(p.data)
	return hex.EncodeToString(sum[:])
}

// ValidateName reports whether name may appear in a payload. Names are 1-255
// bytes of printable ASCII without spaces or path separators, which keeps
// them usable as NUL-terminated strings and as path components in exported
// archives.
func ValidateName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidName, name, MaxNameLength)
	}
	for i := 0; i < len(name); i++ {
		if name[i] <= 0x20 || name[i] > 0x7e || name[i] == '/' {
			return fmt.Errorf("%w: %q contains byte 0x%02x", ErrInvalidName, name, name[i])
		}
	}
	return nil
}
