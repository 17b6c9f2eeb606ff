//go:build !linux

package payload

import (
	"fmt"
	"os"
)

// Open reads the payload at path and parses it. The returned close function
// is a no-op on platforms without mmap support.
func Open(path string) (*Payload, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read payload: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return p, func() error { return nil }, nil
}
