package bundler

import "errors"

var (
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrMissingBinary   = errors.New("application binary not found")
	ErrImageTooLarge   = errors.New("application image exceeds size limit")
	ErrNotFound        = errors.New("payload not found")
	ErrDigestMismatch  = errors.New("payload digest mismatch")
)
