package session

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewDeviceID returns a new ULID string (26 chars) identifying this client
// installation. It is minted once, persisted in the state directory, and sent
// with login and refresh calls so the backend can scope sessions per device.
func NewDeviceID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
