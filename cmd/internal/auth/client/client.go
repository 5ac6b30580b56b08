package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const maxResponseBytes = 1 << 20 // 1MiB

// Client is the authenticated Orchard API client.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	log      *slog.Logger
	metrics  *Metrics
	deviceID string

	refresh refreshGroup
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is still
// wrapped with request-ID tagging and logging.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics sets the metric set (default: unregistered collectors).
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithDeviceID sets the client-instance ID sent with login and refresh calls.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// WithTimeout sets the per-request timeout (default 15s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New constructs a Client for the API at baseURL. The TokenSource is
// required: it is how the client reads and updates session credentials.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		log:     slog.Default(),
		metrics: NewMetrics(nil),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	// Copy so the caller's http.Client is not mutated.
	wrapped := *c.http
	wrapped.Transport = &loggingTransport{base: base, log: c.log}
	c.http = &wrapped

	return c
}

// Login authenticates with the backend. It never triggers a token refresh,
// and a 400/401 rejection is normalized to ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	if req.DeviceID == "" {
		req.DeviceID = c.deviceID
	}

	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, PathLogin, req, &out, false); err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Status == http.StatusBadRequest || se.Status == http.StatusUnauthorized) {
			return LoginResponse{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, se.Message)
		}
		return LoginResponse{}, err
	}
	if out.Token == "" {
		return LoginResponse{}, &StatusError{Status: http.StatusOK, Code: "bad_response", Message: "login response missing token"}
	}
	return out, nil
}

// Logout notifies the backend that the session ends. Refresh-on-401 is
// disabled: a dying session has nothing left worth refreshing.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, PathLogout, nil, nil, false)
}

// Me fetches the current user record. A 401 goes through the shared refresh
// path like any other authenticated request.
func (c *Client) Me(ctx context.Context) (UserPayload, error) {
	var out UserPayload
	if err := c.do(ctx, http.MethodGet, PathMe, nil, &out, true); err != nil {
		return UserPayload{}, err
	}
	return out, nil
}

// Do performs an arbitrary authenticated JSON request against the API, with
// the full refresh-and-replay behavior. out may be nil to discard the body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, body, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, allowRefresh bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	sentWith := c.tokens.AccessToken()
	resp, err := c.send(ctx, method, path, payload, sentWith)
	if err != nil {
		c.metrics.Requests.WithLabelValues(outcomeNetwork).Inc()
		return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh {
		discard(resp)

		// If another caller already refreshed since this request was sent,
		// the stored token is fresher than the one that just failed: replay
		// directly instead of joining a new refresh.
		token := c.tokens.AccessToken()
		if token == "" || token == sentWith {
			token, err = c.sharedRefresh(ctx)
			if err != nil {
				if errors.Is(err, ErrNetworkUnavailable) {
					c.metrics.Requests.WithLabelValues(outcomeNetwork).Inc()
				} else {
					c.metrics.Requests.WithLabelValues(outcomeHTTP).Inc()
				}
				return err
			}
		}

		c.metrics.Replays.Inc()
		resp, err = c.send(ctx, method, path, payload, token)
		if err != nil {
			c.metrics.Requests.WithLabelValues(outcomeNetwork).Inc()
			return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			discard(resp)
			c.metrics.Requests.WithLabelValues(outcomeHTTP).Inc()
			return fmt.Errorf("%w: replay rejected", ErrSessionExpired)
		}
	}

	if err := c.decode(resp, out); err != nil {
		c.metrics.Requests.WithLabelValues(outcomeHTTP).Inc()
		return err
	}
	c.metrics.Requests.WithLabelValues(outcomeOK).Inc()
	return nil
}

// send issues one HTTP attempt. The bearer token is passed explicitly so a
// replay provably uses the post-refresh token.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.http.Do(req)
}

func (c *Client) decode(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
			return nil
		}
		return json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out)
	}

	se := &StatusError{Status: resp.StatusCode}
	var envelope errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&envelope); err == nil {
		se.Code = envelope.Error.Code
		se.Message = envelope.Error.Message
	}
	return se
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
}
