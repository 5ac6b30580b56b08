// Package credstore provides the durable client-side credential storage port.
//
// The session layer persists the access token, refresh token, and serialized
// user record through this port. Implementations must commit multi-key writes
// and removals atomically: a login either lands all keys or none of them.
//
// Three implementations are provided:
//   - Memory: test double, no durability
//   - File: JSON file with 0600 permissions, atomic replace-on-write
//   - Sealed: decorator encrypting values at rest with XChaCha20-Poly1305
package credstore
