package credstore

import "errors"

// Sentinel error kinds (stable for errors.Is).
var (
	ErrCorrupt = errors.New("credential store corrupt")
	ErrSealKey = errors.New("credential store seal key mismatch")
)

// Store is the key-value port for durable client credential storage.
//
// Key names are configuration owned by the caller; implementations must not
// interpret them. Get reports presence explicitly so callers can distinguish
// "absent" from "empty value".
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (value string, ok bool, err error)

	// Set writes a single key.
	Set(key, value string) error

	// SetAll writes all given keys as one atomic commit.
	SetAll(values map[string]string) error

	// RemoveAll deletes all given keys as one atomic commit.
	// Missing keys are not an error.
	RemoveAll(keys ...string) error
}
