// Package app wires the Orchard admin runtime: config, logging, credential
// storage, the session layer, and the API client.
//
// It is intentionally small and deterministic to keep CI gates strict and behavior predictable.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"orchard/cmd/internal/auth/client"
	"orchard/cmd/internal/auth/session"
	"orchard/cmd/internal/guard"
	"orchard/cmd/security/credstore"
	"orchard/cmd/security/seal"

	"github.com/prometheus/client_golang/prometheus"
)

// App is the Orchard admin runtime: it owns the session service, the API
// client, and the navigation guard the commands evaluate against.
type App struct {
	cfg Config
	log Logger

	api     *client.Client
	store   *session.Store
	session *session.Service
	guard   guard.Policy

	registry *prometheus.Registry
	deviceID string
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}

	storage, err := newCredentialStorage(cfg, log)
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	deviceID, err := loadOrCreateDeviceID(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()

	store := session.NewStore(sessCfg, storage, log)
	api := client.New(cfg.APIBaseURL, store,
		client.WithLogger(log),
		client.WithMetrics(client.NewMetrics(registry)),
		client.WithDeviceID(deviceID),
		client.WithTimeout(cfg.HTTPTimeout),
	)
	svc := session.NewService(sessCfg, store, api, log)

	return &App{
		cfg:      cfg,
		log:      log,
		api:      api,
		store:    store,
		session:  svc,
		guard:    guard.Policy{LoginPath: cfg.LoginPath},
		registry: registry,
		deviceID: deviceID,
	}, nil
}

// Session exposes the session operations (login, logout, startup check).
func (a *App) Session() *session.Service { return a.session }

// Store exposes the session state container.
func (a *App) Store() *session.Store { return a.store }

// Client exposes the raw API client for authenticated requests.
func (a *App) Client() *client.Client { return a.api }

// Guard returns the navigation policy for route decisions.
func (a *App) Guard() guard.Policy { return a.guard }

// Registry returns the metrics registry for diagnostic dumps.
func (a *App) Registry() *prometheus.Registry { return a.registry }

// DeviceID returns this installation's stable device identifier.
func (a *App) DeviceID() string { return a.deviceID }

// newCredentialStorage decides between sealed and plaintext credential files.
func newCredentialStorage(cfg Config, log Logger) (credstore.Store, error) {
	file := credstore.NewFile(filepath.Join(cfg.StateDir, "credentials.json"))

	if !seal.Enabled() {
		log.Info("credstore.plaintext", "path", cfg.StateDir)
		return file, nil
	}

	key, err := seal.KeyFromEnv(16)
	if err != nil {
		return nil, err
	}
	sealed, err := credstore.NewSealed(file, key)
	if err != nil {
		return nil, err
	}

	log.Info("credstore.sealed", "path", cfg.StateDir)
	return sealed, nil
}
