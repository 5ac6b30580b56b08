package seal

import (
	"crypto/sha256"
	"os"
	"strings"
)

const (
	// EnvKey is the env var name for the credential sealing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	EnvKey = "ORCHARD_SEAL_KEY"

	// KeySize is the derived key length in bytes (XChaCha20-Poly1305).
	KeySize = 32
)

// DeriveKey derives a fixed-size sealing key from an arbitrary secret string.
// The derivation is deterministic so the same secret always unseals the same data.
func DeriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// KeyFromEnv returns the derived sealing key, enforcing a minimum secret byte length.
// If the env var is missing/blank -> ErrKeyMissing.
// If too short -> ErrKeyTooShort.
func KeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(EnvKey))
	if raw == "" {
		return nil, ErrKeyMissing
	}
	if minBytes > 0 && len(raw) < minBytes {
		return nil, ErrKeyTooShort
	}
	return DeriveKey(raw), nil
}

// Enabled reports whether the env key is present (non-empty after trim).
// Note: This does not enforce minimum length. Use KeyFromEnv for policy checks.
func Enabled() bool {
	raw := strings.TrimSpace(os.Getenv(EnvKey))
	return raw != ""
}
