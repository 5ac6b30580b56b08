package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TokenSource is the client's view of the session store. The concrete
// implementation lives in the session layer; the client only reads and writes
// credentials through this narrow surface.
type TokenSource interface {
	// AccessToken returns the current bearer token, or "" when anonymous.
	AccessToken() string

	// RefreshCredential returns the stored refresh token, or "" when absent.
	RefreshCredential() string

	// ApplyRefreshedToken commits a refreshed token pair to state and durable
	// storage. An empty refresh argument keeps the existing refresh credential.
	ApplyRefreshedToken(access, refresh string) error

	// ForceExpire clears the session after an unrecoverable refresh failure.
	// Cleanup must complete before ForceExpire returns.
	ForceExpire()
}

const requestIDHeader = "X-Request-ID"

// loggingTransport wraps an http.RoundTripper: it tags each request with a
// request ID and logs method/path/status/duration the same way on every call
// path, replays included.
type loggingTransport struct {
	base http.RoundTripper
	log  *slog.Logger
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	if r.Header.Get(requestIDHeader) == "" {
		r.Header.Set(requestIDHeader, uuid.NewString())
	}

	resp, err := t.base.RoundTrip(r)
	if err != nil {
		t.log.Warn("http.request.fail",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", r.Header.Get(requestIDHeader),
			"err", err,
		)
		return nil, err
	}

	t.log.Debug("http.request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", r.Header.Get(requestIDHeader),
	)
	return resp, nil
}
