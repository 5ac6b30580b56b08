package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"orchard/cmd/internal/auth/client"
	"orchard/cmd/security/credstore"
)

// fakeBackend is a minimal Orchard auth backend: one user, rotating tokens,
// and a switch to start rejecting refreshes.
type fakeBackend struct {
	mu            sync.Mutex
	validToken    string
	refreshToken  string
	refuseRefresh bool
	refreshCalls  int
}

func (b *fakeBackend) handler() http.Handler {
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req client.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@b.com" || req.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"code": "bad_credentials"}})
			return
		}
		b.mu.Lock()
		b.validToken, b.refreshToken = "T1", "R1"
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, client.LoginResponse{
			Token:        "T1",
			RefreshToken: "R1",
			User:         client.UserPayload{ID: "1", Email: "a@b.com", FullName: "A B", Roles: []string{"ADMIN"}},
		})
	})

	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		b.mu.Lock()
		token := b.validToken
		b.mu.Unlock()
		if token == "" || r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"code": "token_expired"}})
			return
		}
		writeJSON(w, http.StatusOK, client.UserPayload{ID: "1", Email: "a@b.com", FullName: "A B", Roles: []string{"ADMIN"}})
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.refreshCalls++
		if b.refuseRefresh {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"code": "refresh_revoked"}})
			return
		}
		b.validToken = "T2"
		writeJSON(w, http.StatusOK, map[string]string{"token": "T2"})
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func (b *fakeBackend) expireAccessToken() {
	b.mu.Lock()
	b.validToken = "expired-on-server"
	b.mu.Unlock()
}

func (b *fakeBackend) revokeRefresh() {
	b.mu.Lock()
	b.refuseRefresh = true
	b.mu.Unlock()
}

// Full client/session wiring: login, expiry, transparent refresh, revocation,
// forced logout.
func TestSessionFlow_LoginRefreshAndForcedExpiry(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	cfg := DefaultConfig()
	storage := credstore.NewMemory()
	store := NewStore(cfg, storage, nil)
	api := client.New(srv.URL, store)
	svc := NewService(cfg, store, api, nil)

	expired := false
	store.OnSessionExpired(func() { expired = true })

	ctx := context.Background()

	if err := svc.Login(ctx, "a@b.com", "secret1", true); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := store.AccessToken(); got != "T1" {
		t.Fatalf("token = %q, want T1", got)
	}

	// The backend expires T1; the next authenticated call must transparently
	// refresh to T2 and succeed.
	backend.expireAccessToken()
	if err := svc.CheckAuth(ctx); err != nil {
		t.Fatalf("CheckAuth after expiry: %v", err)
	}
	if got := store.AccessToken(); got != "T2" {
		t.Fatalf("token = %q, want T2 after refresh", got)
	}
	if snap := store.Snapshot(); !snap.Authenticated {
		t.Fatalf("lost authentication across refresh")
	}

	// The backend revokes the refresh credential: the next expiry is terminal.
	backend.expireAccessToken()
	backend.revokeRefresh()

	_, err := api.Me(ctx)
	if !errors.Is(err, client.ErrSessionExpired) {
		t.Fatalf("err=%v, want ErrSessionExpired", err)
	}
	if !expired {
		t.Fatalf("expiry hook did not fire")
	}
	if snap := store.Snapshot(); snap.Authenticated || snap.AccessToken != "" {
		t.Fatalf("session survived revocation: %+v", snap)
	}
	if storage.Len() != 0 {
		t.Fatalf("storage survived revocation")
	}
}
