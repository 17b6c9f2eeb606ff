//go:build linux

package payload

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open maps the payload at path into memory read-only and parses it. The
// returned close function releases the mapping; image views handed out by
// the payload are invalid once it has been called.
func Open(path string) (*Payload, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat payload: %w", err)
	}
	if fi.Size() < headerSize {
		return nil, nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, fi.Size())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap payload: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		unix.Munmap(data)
		return nil, nil, err
	}
	return p, func() error { return unix.Munmap(data) }, nil
}
