// Package replicate adapts the Replicate SDK to the gateway's Runner interface.
package replicate

import (
	"context"
	"fmt"
	"strings"
)

// Runner runs a hosted model to completion and returns its output.
type Runner interface {
	// Run invokes ref with input and blocks until the prediction finishes.
	Run(ctx context.Context, ref string, input map[string]any) (any, error)
}

// ModelRef is a parsed model reference.
type ModelRef struct {
	Owner   string
	Name    string
	Version string
}

// String reassembles the reference.
func (m ModelRef) String() string {
	if m.Version == "" {
		return m.Owner + "/" + m.Name
	}
	return m.Owner + "/" + m.Name + ":" + m.Version
}

// ParseModelRef splits owner/name[:version].
func ParseModelRef(ref string) (ModelRef, error) {
	path, version, hasVersion := strings.Cut(ref, ":")
	owner, name, ok := strings.Cut(path, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return ModelRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	if hasVersion && version == "" {
		return ModelRef{}, fmt.Errorf("%w: %q has an empty version", ErrInvalidRef, ref)
	}
	return ModelRef{Owner: owner, Name: name, Version: version}, nil
}

// Unavailable returns a Runner whose every call fails with cause.
func Unavailable(cause error) Runner {
	return unavailable{cause: cause}
}

type unavailable struct {
	cause error
}

func (u unavailable) Run(context.Context, string, map[string]any) (any, error) {
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, u.cause)
}
