// Package main provides a CI-friendly smoke test for the Orchard auth flow.
//
// It validates, against a running dev API:
//   - login with credentials -> authenticated snapshot
//   - authenticated /auth/me round trip
//   - session survives repeated authenticated calls (refresh path stays quiet or works)
//   - logout -> anonymous snapshot, no credentials retained
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"orchard/cmd/internal/auth/client"
	"orchard/cmd/internal/auth/session"
	"orchard/cmd/security/credstore"
)

func main() {
	var (
		apiURL   = flag.String("url", "http://127.0.0.1:8080", "API base URL")
		email    = flag.String("email", "admin@orchard.dev", "Login email")
		password = flag.String("password", "admin", "Login password")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateAPIURL(*apiURL); err != nil {
		fatalf("invalid -url: %v", err)
	}

	root := context.Background()

	// Memory-backed credentials: a smoke run must not touch the operator's
	// real state directory.
	storage := credstore.NewMemory()
	cfg := session.DefaultConfig()
	store := session.NewStore(cfg, storage, nil)
	api := client.New(*apiURL, store, client.WithTimeout(*timeout))
	svc := session.NewService(cfg, store, api, nil)

	mustLogin(root, svc, *email, *password, *timeout)

	snap := store.Snapshot()
	if !snap.Authenticated || snap.User == nil {
		fatalf("login succeeded but snapshot is not authenticated")
	}
	if *verbose {
		fmt.Printf("logged in: user=%s roles=%v\n", snap.User.Email, snap.User.Roles)
	}

	me := mustMe(root, api, *timeout)
	if !strings.EqualFold(me.Email, *email) {
		fatalf("/auth/me email mismatch: got=%q want=%q", me.Email, *email)
	}

	// A second authenticated call exercises the bearer-attach path again and,
	// if the first token already expired server-side, the refresh+replay path.
	me2 := mustMe(root, api, *timeout)
	if me2.ID != me.ID {
		fatalf("/auth/me user id changed between calls: first=%q second=%q", me.ID, me2.ID)
	}

	mustLogout(root, svc, *timeout)

	snap = store.Snapshot()
	if snap.Authenticated || snap.AccessToken != "" {
		fatalf("logout left an authenticated snapshot")
	}
	if storage.Len() != 0 {
		fatalf("logout left %d stored credential(s)", storage.Len())
	}

	fmt.Printf("OK: user_id=%s email=%s\n", me.ID, me.Email)
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func mustLogin(parent context.Context, svc *session.Service, email, password string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	if err := svc.Login(ctx, email, password, false); err != nil {
		switch {
		case errors.Is(err, client.ErrInvalidCredentials):
			fatalf("login rejected for %s: check -email/-password", email)
		case errors.Is(err, client.ErrNetworkUnavailable):
			fatalf("login failed: API unreachable: %v", err)
		}
		fatalf("login failed: %v", err)
	}
}

func mustMe(parent context.Context, api *client.Client, stepTimeout time.Duration) client.UserPayload {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	me, err := api.Me(ctx)
	if err != nil {
		fatalf("/auth/me failed: %v", err)
	}
	if strings.TrimSpace(me.ID) == "" {
		fatalf("/auth/me returned empty user id")
	}
	return me
}

func mustLogout(parent context.Context, svc *session.Service, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	svc.Logout(ctx)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
