package app

import (
	"errors"

	"orchard/cmd/security/seal"
)

// ValidateSecurityConfig enforces the credential-sealing policy at startup.
// Failing fast beats silently writing tokens to disk in the clear when an
// operator believed sealing was on.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireSealed {
		return nil
	}

	// 16 bytes of secret is the floor; the derived key is always 32 bytes.
	if _, err := seal.KeyFromEnv(16); err != nil {
		switch {
		case errors.Is(err, seal.ErrKeyMissing):
			return errors.New("security policy: ORCHARD_REQUIRE_SEALED=true but ORCHARD_SEAL_KEY is missing")
		case errors.Is(err, seal.ErrKeyTooShort):
			return errors.New("security policy: ORCHARD_REQUIRE_SEALED=true but ORCHARD_SEAL_KEY is too short (min 16 bytes)")
		default:
			return err
		}
	}

	return nil
}
