package session

import "os"

// Config defines the session subsystem's configuration: the durable storage
// key names and the platform tag sent with login calls.
//
// Key names are deliberately configuration rather than constants so that two
// Orchard deployments sharing one state directory cannot clobber each other.
type Config struct {
	// TokenKey is the storage key holding the access token.
	TokenKey string

	// RefreshKey is the storage key holding the refresh token.
	RefreshKey string

	// UserKey is the storage key holding the serialized user record.
	UserKey string

	// Platform is reported to the backend on login ("web", "desktop", ...).
	Platform string
}

// DefaultConfig returns the storage key layout used by the Orchard admin tools.
func DefaultConfig() Config {
	return Config{
		TokenKey:   "orchard.access_token",
		RefreshKey: "orchard.refresh_token",
		UserKey:    "orchard.user",
		Platform:   "desktop",
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - ORCHARD_STORAGE_TOKEN_KEY
//   - ORCHARD_STORAGE_REFRESH_KEY
//   - ORCHARD_STORAGE_USER_KEY
//   - ORCHARD_PLATFORM
//
// Returns ErrConfig if the resulting key names are empty or not distinct.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("ORCHARD_STORAGE_TOKEN_KEY"); v != "" {
		cfg.TokenKey = v
	}
	if v := os.Getenv("ORCHARD_STORAGE_REFRESH_KEY"); v != "" {
		cfg.RefreshKey = v
	}
	if v := os.Getenv("ORCHARD_STORAGE_USER_KEY"); v != "" {
		cfg.UserKey = v
	}
	if v := os.Getenv("ORCHARD_PLATFORM"); v != "" {
		cfg.Platform = v
	}

	if cfg.TokenKey == "" || cfg.RefreshKey == "" || cfg.UserKey == "" {
		return Config{}, ErrConfig
	}
	if cfg.TokenKey == cfg.RefreshKey || cfg.TokenKey == cfg.UserKey || cfg.RefreshKey == cfg.UserKey {
		return Config{}, ErrConfig
	}

	return cfg, nil
}

// storageKeys returns all durable keys owned by the session, for joint removal.
func (c Config) storageKeys() []string {
	return []string{c.TokenKey, c.RefreshKey, c.UserKey}
}
