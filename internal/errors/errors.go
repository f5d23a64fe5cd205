// Package errors consolidates sentinel errors for the flightlog core.
//
// The core has no fatal conditions: every error here marks a piece of data
// or a derived metric as unavailable, and callers degrade gracefully.
package errors

import (
	"errors"
	"fmt"
)

var (
	// Not found / missing prerequisite
	ErrNotFound     = errors.New("not found")
	ErrMissingInput = errors.New("required input channel missing")

	// Channel state
	ErrTypeMismatch = errors.New("channel type mismatch")
	ErrEmptyChannel = errors.New("channel holds no data")

	// Merge
	ErrMergeConflict = errors.New("channel refused merge")

	// Time synchronization
	ErrBackwardJump = errors.New("timestamp too far in the past")
	ErrForwardJump  = errors.New("timestamp too far in the future")

	// Registry
	ErrNoOwner = errors.New("channel has no owning group")
)

// IsRejectedTime reports whether err is a jump rejection in either direction.
func IsRejectedTime(err error) bool {
	return errors.Is(err, ErrBackwardJump) || errors.Is(err, ErrForwardJump)
}

// Wrap adds context to an error, preserving the sentinel for errors.Is.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
