package client

import (
	"errors"
	"fmt"
)

// Sentinel error kinds (stable for errors.Is and for UI messaging).
var (
	// ErrInvalidCredentials is returned when the login endpoint rejects the
	// submitted email/password pair. Session state is left untouched.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired is returned when the refresh credential was rejected
	// or a replayed request still came back unauthorized. The session has
	// already been force-expired when callers observe this error.
	ErrSessionExpired = errors.New("session expired")

	// ErrNetworkUnavailable is returned when the backend could not be reached
	// or the request timed out. It is deliberately distinct from
	// ErrSessionExpired so a transient blip never logs the user out.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrUnauthorized is returned on 403: the caller is authenticated but not
	// allowed. No session mutation happens.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is the passthrough error for HTTP failures that carry no
// authentication meaning. Code/Message come from the API error envelope when
// the body had one.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps authentication-meaningful statuses onto the sentinel kinds so
// errors.Is works without callers inspecting status codes.
func (e *StatusError) Unwrap() error {
	switch e.Status {
	case 401:
		return ErrSessionExpired
	case 403:
		return ErrUnauthorized
	}
	return nil
}

// IsSessionExpired reports whether err represents ErrSessionExpired.
func IsSessionExpired(err error) bool { return errors.Is(err, ErrSessionExpired) }

// IsNetworkUnavailable reports whether err represents ErrNetworkUnavailable.
func IsNetworkUnavailable(err error) bool { return errors.Is(err, ErrNetworkUnavailable) }

// IsInvalidCredentials reports whether err represents ErrInvalidCredentials.
func IsInvalidCredentials(err error) bool { return errors.Is(err, ErrInvalidCredentials) }
