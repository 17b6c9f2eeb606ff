package payload

import "errors"

var (
	ErrInvalidName   = errors.New("invalid application name")
	ErrDuplicateName = errors.New("duplicate application name")
	ErrEmptyImage    = errors.New("empty application image")
	ErrBadAlignment  = errors.New("alignment must be a power of two and at least 8")
	ErrBadMagic      = errors.New("bad payload magic")
	ErrBadVersion    = errors.New("unsupported payload version")
	ErrCorrupt       = errors.New("corrupt payload")
)
