package boot

import "errors"

var (
	ErrInvalidPhase = errors.New("invalid bootstrap phase")
	ErrAlreadyRun   = errors.New("bootstrap sequence already run")
)
