package payload

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer assembles a payload from named images. Entries keep the order they
// were added in; that order is the iteration contract consumers rely on.
type Writer struct {
	alignment uint64
	names     map[string]struct{}
	entries   []pendingEntry
}

type pendingEntry struct {
	name  string
	image []byte
}

// NewWriter returns a writer using the minimum image alignment.
func NewWriter() *Writer {
	w, err := NewWriterAlign(MinAlignment)
	if err != nil {
		panic(err) // MinAlignment is always valid
	}
	return w
}

// NewWriterAlign returns a writer that places every image start on the given
// alignment, which must be a power of two no smaller than MinAlignment.
func NewWriterAlign(alignment uint64) (*Writer, error) {
	if alignment < MinAlignment || alignment&(alignment-1) != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadAlignment, alignment)
	}
	return &Writer{
		alignment: alignment,
		names:     make(map[string]struct{}),
	}, nil
}

// Add appends an image under the given name. Names must be unique within the
// payload and images must be non-empty.
func (w *Writer) Add(name string, image []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, ok := w.names[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if len(image) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyImage, name)
	}
	w.names[name] = struct{}{}
	w.entries = append(w.entries, pendingEntry{name: name, image: image})
	return nil
}

// Count returns the number of images added so far.
func (w *Writer) Count() int {
	return len(w.entries)
}

// Bytes assembles the artifact. The output is a pure function of the added
// entries; identical inputs produce byte-identical artifacts.
func (w *Writer) Bytes() []byte {
	var nameLen uint64
	for _, e := range w.entries {
		nameLen += uint64(len(e.name)) + 1
	}
	nameOff := uint64(headerSize + entrySize*len(w.entries))

	starts := make([]uint64, len(w.entries))
	off := nameOff + nameLen
	for i, e := range w.entries {
		off = alignUp(off, w.alignment)
		starts[i] = off
		off += uint64(len(e.image))
	}

	buf := make([]byte, off)
	copy(buf[0:8], magic[:])
	binary.LittleEndian.PutUint32(buf[8:12], FormatVersion)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(w.entries)))
	binary.LittleEndian.PutUint64(buf[16:24], nameOff)
	binary.LittleEndian.PutUint64(buf[24:32], nameLen)

	pos := headerSize
	for i, e := range w.entries {
		binary.LittleEndian.PutUint64(buf[pos:pos+8], starts[i])
		binary.LittleEndian.PutUint64(buf[pos+8:pos+16], starts[i]+uint64(len(e.image)))
		pos += entrySize
	}
	for _, e := range w.entries {
		pos += copy(buf[pos:], e.name)
		pos++ // NUL terminator, buf is already zeroed
	}
	for i, e := range w.entries {
		copy(buf[starts[i]:], e.image)
	}

	return buf
}

// WriteTo writes the assembled artifact to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(w.Bytes())
	return int64(n), err
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
