package app

import (
	"os"
	"path/filepath"
	"time"
)

// Config contains all runtime configuration for the Orchard admin CLI.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// environment variables.
type Config struct {
	// APIBaseURL is the Orchard Store API root, e.g. "https://api.orchard.example".
	APIBaseURL string

	LogLevel  string
	LogFormat string // "json" or "pretty"

	// HTTPTimeout bounds every single API request, replays included.
	HTTPTimeout time.Duration

	// StateDir holds the credential file, device ID, and default config file.
	StateDir string

	// LoginPath is the login entry point the navigation guard redirects to.
	LoginPath string

	// RequireSealed refuses to start unless ORCHARD_SEAL_KEY is configured,
	// so credentials can never land on disk in the clear.
	RequireSealed bool
}

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		APIBaseURL:  "http://127.0.0.1:8080",
		LogLevel:    "info",
		LogFormat:   "pretty",
		HTTPTimeout: 15 * time.Second,
		StateDir:    defaultStateDir(),
		LoginPath:   "/login",
	}
}

// LoadConfig resolves the effective configuration: defaults, then the config
// file (if any), then environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if err := applyConfigFile(&cfg, configFilePath(cfg.StateDir)); err != nil {
		return Config{}, err
	}

	cfg.APIBaseURL = EnvString("ORCHARD_API_BASE_URL", cfg.APIBaseURL)
	cfg.LogLevel = EnvString("ORCHARD_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = EnvString("ORCHARD_LOG_FORMAT", cfg.LogFormat)
	cfg.HTTPTimeout = EnvDuration("ORCHARD_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.StateDir = EnvString("ORCHARD_STATE_DIR", cfg.StateDir)
	cfg.LoginPath = EnvString("ORCHARD_LOGIN_PATH", cfg.LoginPath)
	cfg.RequireSealed = EnvBool("ORCHARD_REQUIRE_SEALED", cfg.RequireSealed)

	return cfg, nil
}

func configFilePath(stateDir string) string {
	if p := os.Getenv("ORCHARD_CONFIG_FILE"); p != "" {
		return p
	}
	return filepath.Join(stateDir, "config.yaml")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".orchard"
	}
	return filepath.Join(home, ".orchard")
}
