// Package seal provides key-handling primitives for sealing client
// credentials at rest.
//
// It is the single source of truth for how the sealing key is obtained.
//
// Design goals:
// - Default dev mode: sealing disabled when no key is configured.
// - Enforced mode: callers require a key of sufficient entropy (>= 16 bytes).
// - Stable 32-byte output suitable for XChaCha20-Poly1305.
//
// Environment:
// - ORCHARD_SEAL_KEY: when set, enables sealed credential storage.
package seal
