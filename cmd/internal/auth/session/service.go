package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"orchard/cmd/internal/auth/client"
)

// API is the slice of the request client the session operations need. The
// concrete implementation is *client.Client; tests inject fakes.
type API interface {
	Login(ctx context.Context, req client.LoginRequest) (client.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (client.UserPayload, error)
}

// Service implements the high-level session operations: login, logout, and
// the startup authentication check.
type Service struct {
	cfg   Config
	store *Store
	api   API
	log   *slog.Logger

	// The startup check is a shared, at-most-once task: concurrent callers
	// and callers whose contexts die all observe the one underlying check.
	initOnce sync.Once
	initDone chan struct{}
	initErr  error
}

// NewService constructs a Service over the given store and API client.
func NewService(cfg Config, store *Store, api API, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		api:      api,
		log:      log,
		initDone: make(chan struct{}),
	}
}

// Store exposes the underlying state container for guards and subscribers.
func (s *Service) Store() *Store { return s.store }

// Login authenticates with the backend. Durable storage is written only after
// the network call succeeds, never speculatively. With rememberMe off the
// session lives in memory only.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) error {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: empty password", ErrInvalidInput)
	}

	s.store.setLoading(true)
	defer s.store.setLoading(false)

	resp, err := s.api.Login(ctx, client.LoginRequest{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
		Platform:   s.cfg.Platform,
	})
	if err != nil {
		// Normalized by the client (ErrInvalidCredentials / ErrNetworkUnavailable).
		// State is untouched; the login form renders the error.
		return err
	}

	if err := s.store.commitSession(userFromPayload(resp.User), resp.Token, resp.RefreshToken, rememberMe); err != nil {
		return err
	}

	s.log.Info("auth.login.ok", "user_id", resp.User.ID, "remembered", rememberMe)
	return nil
}

// Logout ends the session. The backend notification is best-effort; local
// cleanup always happens and Logout never fails.
func (s *Service) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn("auth.logout.notify_fail", "err", err)
	}

	if err := s.store.clear(); err != nil {
		s.log.Warn("auth.logout.storage_fail", "err", err)
	}

	s.log.Info("auth.logout.ok")
}

// Initialize runs the startup session check at most once per process and
// waits for it. Callers whose context expires stop waiting, but the shared
// check keeps running for everyone else.
func (s *Service) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		detached := context.WithoutCancel(ctx)
		go func() {
			defer close(s.initDone)
			s.initErr = s.CheckAuth(detached)
		}()
	})

	select {
	case <-s.initDone:
		return s.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckAuth validates any stored credentials against the backend. Without a
// stored token it resolves to anonymous with no network call. The initialized
// latch is set at the end regardless of outcome.
//
// A network failure keeps the stored credentials: being offline is not the
// same as being logged out.
func (s *Service) CheckAuth(ctx context.Context) error {
	s.store.setLoading(true)
	defer func() {
		s.store.setLoading(false)
		s.store.markInitialized()
	}()

	found, err := s.store.restore()
	if err != nil {
		// Unreadable storage: treat as no session, but surface the problem.
		if clearErr := s.store.clear(); clearErr != nil {
			s.log.Warn("auth.check.cleanup_fail", "err", clearErr)
		}
		return err
	}
	if !found {
		s.log.Debug("auth.check.no_stored_token")
		return nil
	}

	payload, err := s.api.Me(ctx)
	if err != nil {
		if client.IsNetworkUnavailable(err) {
			s.log.Warn("auth.check.offline", "err", err)
			return err
		}
		// Expired/invalid token. The client has already force-expired the
		// session on refresh failure; clearing again is harmless.
		s.log.Info("auth.check.rejected")
		if clearErr := s.store.clear(); clearErr != nil {
			s.log.Warn("auth.check.cleanup_fail", "err", clearErr)
		}
		return nil
	}

	s.store.adoptUser(userFromPayload(payload))
	s.log.Info("auth.check.ok", "user_id", payload.ID)
	return nil
}

// SetUser patches in a fresher user record obtained outside a full login.
func (s *Service) SetUser(u User) {
	s.store.SetUser(u)
}
