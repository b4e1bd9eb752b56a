package smoke

import "errors"

// Sentinel kinds for smoke run errors.
var (
	ErrProbeFailed  = errors.New("status probe failed")
	ErrUnknownRoute = errors.New("unknown route")
)
