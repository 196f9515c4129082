// Package somerr defines the typed error conditions surfaced by the SOM
// training and mapping engine.
package somerr

import "errors"

// Sentinel error kinds. Wrap with fmt.Errorf("...: %w", Err*) to attach
// context; callers should compare with errors.Is.
var (
	// ErrMalformedHeader means the input file does not match the expected
	// binary layout (bad magic/version, non-positive dimensionality).
	ErrMalformedHeader = errors.New("som: malformed file header")

	// ErrIO means an underlying read/write failed.
	ErrIO = errors.New("som: io error")

	// ErrInvalidParameter means a setup-time parameter was out of range
	// (sigma <= 0, rotations < 1, mismatched image/neuron dimensions).
	ErrInvalidParameter = errors.New("som: invalid parameter")

	// ErrDimensionMismatch means two tensors that must share a shape did
	// not.
	ErrDimensionMismatch = errors.New("som: dimension mismatch")

	// ErrCancelled means training was cooperatively cancelled. It is
	// non-fatal: callers receive the partial result alongside this error.
	ErrCancelled = errors.New("som: cancelled")
)
