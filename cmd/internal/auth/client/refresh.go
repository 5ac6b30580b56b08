package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// refreshGroup coordinates the single in-flight refresh. singleflight keyed
// on a constant collapses every concurrent caller onto one upstream call and
// forgets the key once it resolves, so the next expiry starts a fresh one —
// there is no flag to reset and nothing to deadlock on.
type refreshGroup struct {
	group singleflight.Group
}

const refreshKey = "token-refresh"

// sharedRefresh joins (or starts) the in-flight refresh and returns the new
// access token. All callers of one flight observe the same outcome.
//
// The upstream call runs with the triggering caller's context detached:
// cancelling one waiting request must not abort the refresh other requests
// depend on.
func (c *Client) sharedRefresh(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.group.Do(refreshKey, func() (any, error) {
		token, err := c.refreshOnce(context.WithoutCancel(ctx))
		if err != nil {
			c.metrics.RefreshFailures.Inc()
			if errors.Is(err, ErrSessionExpired) {
				// Session cleanup completes before any waiter sees the error,
				// so no caller can act on stale authenticated state.
				c.tokens.ForceExpire()
			}
			return nil, err
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// refreshOnce performs the actual POST /auth/refresh. It is only ever invoked
// from inside the singleflight group.
func (c *Client) refreshOnce(ctx context.Context) (string, error) {
	c.metrics.RefreshAttempts.Inc()

	credential := c.tokens.RefreshCredential()
	if credential == "" {
		return "", fmt.Errorf("%w: no refresh credential", ErrSessionExpired)
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: credential, DeviceID: c.deviceID})
	if err != nil {
		return "", err
	}

	resp, err := c.send(ctx, http.MethodPost, PathRefresh, payload, "")
	if err != nil {
		return "", fmt.Errorf("%w: refresh: %v", ErrNetworkUnavailable, err)
	}

	var out refreshResponse
	if err := c.decode(resp, &out); err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			// Any server rejection of the refresh credential is terminal, no retry.
			return "", fmt.Errorf("%w: refresh rejected (status %d)", ErrSessionExpired, se.Status)
		}
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: refresh response missing token", ErrSessionExpired)
	}

	if err := c.tokens.ApplyRefreshedToken(out.Token, out.RefreshToken); err != nil {
		return "", err
	}

	c.log.Info("auth.refresh.ok")
	return out.Token, nil
}
