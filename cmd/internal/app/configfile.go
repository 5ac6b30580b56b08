package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file shape. Pointers distinguish "absent"
// from zero values so the file only overrides what it mentions.
type fileConfig struct {
	APIBaseURL    *string `yaml:"api_base_url"`
	LogLevel      *string `yaml:"log_level"`
	LogFormat     *string `yaml:"log_format"`
	HTTPTimeout   *string `yaml:"http_timeout"`
	StateDir      *string `yaml:"state_dir"`
	LoginPath     *string `yaml:"login_path"`
	RequireSealed *bool   `yaml:"require_sealed"`
}

// applyConfigFile overlays the YAML file at path onto cfg. A missing file is
// not an error; a malformed one is.
func applyConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.HTTPTimeout != nil {
		d, err := time.ParseDuration(*fc.HTTPTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("config file %s: bad http_timeout %q", path, *fc.HTTPTimeout)
		}
		cfg.HTTPTimeout = d
	}
	if fc.StateDir != nil {
		cfg.StateDir = *fc.StateDir
	}
	if fc.LoginPath != nil {
		cfg.LoginPath = *fc.LoginPath
	}
	if fc.RequireSealed != nil {
		cfg.RequireSealed = *fc.RequireSealed
	}

	return nil
}
