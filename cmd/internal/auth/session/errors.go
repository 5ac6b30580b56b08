package session

import "errors"

var (
	// ErrInvalidInput is returned when login is attempted with an empty or
	// malformed email/password pair, before any network call.
	ErrInvalidInput = errors.New("invalid_input")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
