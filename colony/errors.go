package colony

import "errors"

var (
	// ErrInvalidConfiguration is returned for unusable bounds, config values or tick deltas
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidState is returned when an operation is not permitted in the current phase
	ErrInvalidState = errors.New("invalid state")
)
