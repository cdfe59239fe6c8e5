package token

import "errors"

// Validation errors, reported before any I/O.
var (
	// ErrInvalidAmount is returned for a negative amount or one outside the
	// representable u64 range.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDecimals is returned when mint decimals fall outside [0, 9].
	ErrInvalidDecimals = errors.New("invalid decimals: must be within [0, 9]")

	// ErrMissingAuthority is returned when a required authority address is
	// the zero value.
	ErrMissingAuthority = errors.New("missing required authority")
)
