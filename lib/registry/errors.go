package registry

import "errors"

var ErrIndexOutOfRange = errors.New("application index out of range")
