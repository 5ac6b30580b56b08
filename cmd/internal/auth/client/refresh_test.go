package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// fakeTokens is an in-memory TokenSource standing in for the session store.
type fakeTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	expired int
	applied int
}

func (f *fakeTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access
}

func (f *fakeTokens) RefreshCredential() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeTokens) ApplyRefreshedToken(access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = access
	if refresh != "" {
		f.refresh = refresh
	}
	f.applied++
	return nil
}

func (f *fakeTokens) ForceExpire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = ""
	f.refresh = ""
	f.expired++
}

func (f *fakeTokens) expiredCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expired
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func write401(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: apiError{Code: "token_expired", Message: "access token expired"}})
}

// Concurrent credential-expiry failures must share exactly one upstream
// refresh call, and every request must be replayed with the refreshed token.
func TestSharedRefresh_SingleFlightUnderConcurrency(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathRefresh:
			refreshCalls.Add(1)
			// Widen the in-flight window so every failing request joins it.
			time.Sleep(50 * time.Millisecond)
			writeJSON(w, http.StatusOK, refreshResponse{Token: "T2", RefreshToken: "R2"})
		case "/catalog/brands":
			if r.Header.Get("Authorization") != "Bearer T2" {
				write401(w)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := &fakeTokens{access: "T1", refresh: "R1"}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	c := New(srv.URL, tokens, WithMetrics(metrics))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out map[string]string
			errs[i] = c.Do(context.Background(), http.MethodGet, "/catalog/brands", nil, &out)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	require.EqualValues(t, 1, refreshCalls.Load(), "exactly one upstream refresh")
	require.Equal(t, "T2", tokens.AccessToken())
	require.Equal(t, "R2", tokens.RefreshCredential())
	require.EqualValues(t, 1, testutil.ToFloat64(metrics.RefreshAttempts))
	require.EqualValues(t, float64(n), testutil.ToFloat64(metrics.Replays))
}

// A single 401 is refreshed and the original request replayed once with the
// new bearer; the caller sees the replayed response unchanged.
func TestRefreshAndReplay_SingleRequest(t *testing.T) {
	t.Parallel()

	var sawBearers []string
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathRefresh:
			writeJSON(w, http.StatusOK, refreshResponse{Token: "T2"})
		case "/catalog/products/42":
			mu.Lock()
			sawBearers = append(sawBearers, r.Header.Get("Authorization"))
			mu.Unlock()
			if r.Header.Get("Authorization") != "Bearer T2" {
				write401(w)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"id": 42, "name": "Amber Oud", "sku": "ORC-AMBER-OUD"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := &fakeTokens{access: "T1", refresh: "R1"}
	c := New(srv.URL, tokens)

	var out struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		SKU  string `json:"sku"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/catalog/products/42", nil, &out))
	require.Equal(t, 42, out.ID)
	require.Equal(t, "Amber Oud", out.Name)
	require.Equal(t, []string{"Bearer T1", "Bearer T2"}, sawBearers)
	// Refresh returned no rotated credential, so the old one is kept.
	require.Equal(t, "R1", tokens.RefreshCredential())
}

// A rejected refresh is terminal: every queued request fails with
// ErrSessionExpired and the session is force-expired exactly once.
func TestRefreshRejected_ExpiresSessionForAllWaiters(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathRefresh:
			refreshCalls.Add(1)
			time.Sleep(50 * time.Millisecond)
			write401(w)
		default:
			write401(w)
		}
	}))
	defer srv.Close()

	tokens := &fakeTokens{access: "T1", refresh: "R1"}
	c := New(srv.URL, tokens)

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Do(context.Background(), http.MethodGet, "/catalog/brands", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.ErrorIs(t, err, ErrSessionExpired, "request %d", i)
	}
	require.EqualValues(t, 1, refreshCalls.Load())
	require.Equal(t, 1, tokens.expiredCount(), "one forced expiry")
	require.Empty(t, tokens.AccessToken())
}

// A refresh that cannot reach the backend is a network failure, not a session
// expiry: the stored credentials survive.
func TestRefreshNetworkFailure_DoesNotExpireSession(t *testing.T) {
	t.Parallel()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PathRefresh {
			// Simulate the refresh endpoint dropping the connection.
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				_ = conn.Close()
				return
			}
		}
		write401(w)
	}))
	defer apiSrv.Close()

	tokens := &fakeTokens{access: "T1", refresh: "R1"}
	c := New(apiSrv.URL, tokens)

	err := c.Do(context.Background(), http.MethodGet, "/catalog/brands", nil, nil)
	require.ErrorIs(t, err, ErrNetworkUnavailable)
	require.Equal(t, 0, tokens.expiredCount())
	require.Equal(t, "R1", tokens.RefreshCredential())
}

// A caller that finds the token already rotated replays directly without
// starting another refresh.
func TestStaleTokenFailure_ReplaysWithoutNewRefresh(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathRefresh:
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, refreshResponse{Token: "T3"})
		default:
			if r.Header.Get("Authorization") == "Bearer T2" {
				writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
				return
			}
			// Delay the rejection so the rotation below lands while the
			// first attempt is still in flight.
			time.Sleep(30 * time.Millisecond)
			write401(w)
		}
	}))
	defer srv.Close()

	tokens := &fakeTokens{access: "T1", refresh: "R1"}
	c := New(srv.URL, tokens)

	// Another caller rotates the token underneath the in-flight request.
	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = tokens.ApplyRefreshedToken("T2", "")
	}()

	var out map[string]string
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/catalog/brands", nil, &out))
	require.Equal(t, "ok", out["status"])
	require.EqualValues(t, 0, refreshCalls.Load(), "no refresh when the token already rotated")
}
