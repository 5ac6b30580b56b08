package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"orchard/cmd/internal/auth/session"
)

const deviceIDFile = "device_id"

// loadOrCreateDeviceID returns the installation's device identifier,
// minting and persisting one on first run. The ID survives logout so the
// backend can correlate sessions from the same machine.
func loadOrCreateDeviceID(stateDir string) (string, error) {
	path := filepath.Join(stateDir, deviceIDFile)

	if b, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(b)); id != "" {
			return id, nil
		}
	}

	id, err := session.NewDeviceID(time.Now())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", err
	}
	return id, nil
}
