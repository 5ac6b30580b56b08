package session

import (
	"log/slog"
	"slices"
	"sync"

	"orchard/cmd/security/credstore"
)

// Snapshot is an immutable view of the session state. Consumers (navigation
// guard, CLI, subscribers) only ever see copies.
type Snapshot struct {
	User          *User
	AccessToken   string
	Authenticated bool
	Initialized   bool
	Loading       bool
}

// Store holds the session state and mirrors the committed credential set into
// durable storage. Every mutation is an atomic state replace under one lock;
// subscribers are notified after the lock is released.
//
// Store implements client.TokenSource.
type Store struct {
	mu           sync.Mutex
	snap         Snapshot
	refreshToken string

	// persisted tracks whether durable storage currently holds this session
	// (false for remember-me-off logins, which live in memory only).
	persisted bool

	cfg     Config
	storage credstore.Store
	log     *slog.Logger

	subs    map[int]func(Snapshot)
	nextSub int

	onExpired func()
}

// NewStore constructs an empty Store over the given durable storage.
func NewStore(cfg Config, storage credstore.Store, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		cfg:     cfg,
		storage: storage,
		log:     log,
		subs:    make(map[int]func(Snapshot)),
	}
}

// Snapshot returns a copy of the current state. The User record is cloned so
// callers cannot mutate shared state through it.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(s.snap)
}

// Subscribe registers fn to run after every state change. The returned cancel
// func unregisters it. fn is called without the store lock held.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OnSessionExpired registers the navigation hook invoked after a forced
// expiry. Cleanup is already complete when fn runs.
func (s *Store) OnSessionExpired(fn func()) {
	s.mu.Lock()
	s.onExpired = fn
	s.mu.Unlock()
}

// AccessToken implements client.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.AccessToken
}

// RefreshCredential implements client.TokenSource.
func (s *Store) RefreshCredential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshToken
}

// ApplyRefreshedToken implements client.TokenSource: it commits the
// post-refresh token pair to state and, for persisted sessions, to durable
// storage before any replayed request reads it.
func (s *Store) ApplyRefreshedToken(access, refresh string) error {
	s.mu.Lock()
	s.snap.AccessToken = access
	if refresh != "" {
		s.refreshToken = refresh
	}
	persist := s.persisted
	values := map[string]string{s.cfg.TokenKey: access}
	if refresh != "" {
		values[s.cfg.RefreshKey] = refresh
	}
	s.mu.Unlock()

	if persist {
		if err := s.storage.SetAll(values); err != nil {
			return err
		}
	}
	s.notify()
	return nil
}

// ForceExpire implements client.TokenSource: unrecoverable refresh failure.
// State and storage are cleared synchronously, then the expiry hook fires.
func (s *Store) ForceExpire() {
	if err := s.clear(); err != nil {
		s.log.Warn("session.force_expire.storage_fail", "err", err)
	}

	s.mu.Lock()
	hook := s.onExpired
	s.mu.Unlock()

	s.log.Info("session.force_expired")
	if hook != nil {
		hook()
	}
}

// SetUser patches in a fresher user record without a full login.
func (s *Store) SetUser(u User) {
	s.mu.Lock()
	s.snap.User = &u
	persist := s.persisted && s.snap.Authenticated
	s.mu.Unlock()

	if persist {
		if encoded, err := encodeUser(u); err == nil {
			if err := s.storage.Set(s.cfg.UserKey, encoded); err != nil {
				s.log.Warn("session.user.persist_fail", "err", err)
			}
		}
	}
	s.notify()
}

// commitSession installs an authenticated session. The durable write happens
// first: if it fails, state is left untouched and the login fails.
func (s *Store) commitSession(u User, access, refresh string, persist bool) error {
	if persist {
		encoded, err := encodeUser(u)
		if err != nil {
			return err
		}
		values := map[string]string{
			s.cfg.TokenKey: access,
			s.cfg.UserKey:  encoded,
		}
		if refresh != "" {
			values[s.cfg.RefreshKey] = refresh
		}
		if err := s.storage.SetAll(values); err != nil {
			return err
		}
	} else {
		// Drop any credentials a previous remembered session left behind.
		if err := s.storage.RemoveAll(s.cfg.storageKeys()...); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.snap.User = &u
	s.snap.AccessToken = access
	s.snap.Authenticated = true
	s.refreshToken = refresh
	s.persisted = persist
	s.mu.Unlock()

	s.notify()
	return nil
}

// restore loads stored credentials into state without authenticating. It
// reports whether a stored token was found so the startup check knows whether
// a network validation is needed at all.
func (s *Store) restore() (found bool, err error) {
	token, ok, err := s.storage.Get(s.cfg.TokenKey)
	if err != nil {
		return false, err
	}
	if !ok || token == "" {
		return false, nil
	}

	refresh, _, err := s.storage.Get(s.cfg.RefreshKey)
	if err != nil {
		return false, err
	}

	var user *User
	if raw, ok, err := s.storage.Get(s.cfg.UserKey); err == nil && ok {
		if u, err := decodeUser(raw); err == nil {
			user = &u
		}
	} else if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.snap.AccessToken = token
	s.snap.User = user
	s.refreshToken = refresh
	s.persisted = true
	s.mu.Unlock()

	s.notify()
	return true, nil
}

// adoptUser marks the session authenticated with a validated user record.
func (s *Store) adoptUser(u User) {
	s.mu.Lock()
	s.snap.User = &u
	s.snap.Authenticated = true
	persist := s.persisted
	s.mu.Unlock()

	if persist {
		if encoded, err := encodeUser(u); err == nil {
			if err := s.storage.Set(s.cfg.UserKey, encoded); err != nil {
				s.log.Warn("session.user.persist_fail", "err", err)
			}
		}
	}
	s.notify()
}

// clear resets the session to anonymous and removes all storage keys
// together. The initialized latch survives.
func (s *Store) clear() error {
	err := s.storage.RemoveAll(s.cfg.storageKeys()...)

	s.mu.Lock()
	s.snap.User = nil
	s.snap.AccessToken = ""
	s.snap.Authenticated = false
	s.refreshToken = ""
	s.persisted = false
	s.mu.Unlock()

	s.notify()
	return err
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	changed := s.snap.Loading != v
	s.snap.Loading = v
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// markInitialized latches the initialized flag. It never unlatches.
func (s *Store) markInitialized() {
	s.mu.Lock()
	changed := !s.snap.Initialized
	s.snap.Initialized = true
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := cloneSnapshot(s.snap)
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func cloneSnapshot(snap Snapshot) Snapshot {
	if snap.User != nil {
		u := *snap.User
		u.Roles = slices.Clone(snap.User.Roles)
		u.Authorities = slices.Clone(snap.User.Authorities)
		snap.User = &u
	}
	return snap
}
