package payload

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Parse validates data as a payload artifact and returns a view over it. The
// returned Payload aliases data, so callers must keep data immutable for its
// lifetime. All structural invariants are checked here, once; downstream
// consumers may index without re-validating.
func Parse(data []byte) (*Payload, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	if !bytes.Equal(data[0:8], magic[:]) {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, data[0:8])
	}
	if v := binary.LittleEndian.Uint32(data[8:12]); v != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, v)
	}

	count := binary.LittleEndian.Uint32(data[12:16])
	nameOff := binary.LittleEndian.Uint64(data[16:24])
	nameLen := binary.LittleEndian.Uint64(data[24:32])
	size := uint64(len(data))

	entriesEnd := uint64(headerSize) + entrySize*uint64(count)
	if entriesEnd > size {
		return nil, fmt.Errorf("%w: entry table for %d applications exceeds %d payload bytes", ErrCorrupt, count, size)
	}
	if nameOff != entriesEnd {
		return nil, fmt.Errorf("%w: name table offset %d, want %d", ErrCorrupt, nameOff, entriesEnd)
	}
	if nameLen > size || nameOff > size-nameLen {
		return nil, fmt.Errorf("%w: name table [%d, %d) exceeds %d payload bytes", ErrCorrupt, nameOff, nameOff+nameLen, size)
	}

	names := data[nameOff : nameOff+nameLen]
	entries := make([]Entry, 0, count)
	seen := make(map[string]struct{}, count)

	pos := uint64(headerSize)
	prevEnd := nameOff + nameLen
	for i := uint32(0); i < count; i++ {
		start := binary.LittleEndian.Uint64(data[pos : pos+8])
		end := binary.LittleEndian.Uint64(data[pos+8 : pos+16])
		pos += entrySize

		name, rest, ok := cutName(names)
		if !ok {
			return nil, fmt.Errorf("%w: name table holds %d names, header says %d", ErrCorrupt, i, count)
		}
		names = rest

		if err := ValidateName(name); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}

		if start > end {
			return nil, fmt.Errorf("%w: entry %d start %d is after end %d", ErrCorrupt, i, start, end)
		}
		if end > size {
			return nil, fmt.Errorf("%w: entry %d end %d exceeds %d payload bytes", ErrCorrupt, i, end, size)
		}
		if start < prevEnd {
			return nil, fmt.Errorf("%w: entry %d start %d overlaps preceding data ending at %d", ErrCorrupt, i, start, prevEnd)
		}
		if start%MinAlignment != 0 {
			return nil, fmt.Errorf("%w: entry %d start %d is not %d-byte aligned", ErrCorrupt, i, start, MinAlignment)
		}

		entries = append(entries, Entry{Name: name, Start: start, End: end})
		prevEnd = end
	}
	if len(names) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes in name table", ErrCorrupt, len(names))
	}

	return &Payload{data: data, entries: entries}, nil
}

// cutName splits the first NUL-terminated name off the name table.
func cutName(b []byte) (name string, rest []byte, ok bool) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", nil, false
	}
	return string(b[:i]), b[i+1:], true
}
