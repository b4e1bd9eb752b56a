package service

import "errors"

// Sentinel kinds for invocation errors.
var (
	ErrInvocation  = errors.New("invocation failure")
	ErrRunnerPanic = errors.New("inference backend panicked")
)

// InvocationError is the single failure kind of Invoke. Its message is the
// backend's message unchanged.
type InvocationError struct {
	Route string
	Model string
	Err   error
}

func (e *InvocationError) Error() string { return e.Err.Error() }

func (e *InvocationError) Unwrap() error { return e.Err }

// Is matches ErrInvocation so callers can test the kind without a type switch.
func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }
