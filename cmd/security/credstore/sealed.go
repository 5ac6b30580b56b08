package credstore

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed decorates a Store so that every value is encrypted at rest with
// XChaCha20-Poly1305. Keys are left in the clear; only values are sealed.
//
// A random nonce is generated per write and prefixed to the ciphertext, so
// sealing the same value twice yields different stored bytes.
type Sealed struct {
	inner Store
	aead  interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
	nonceSize int
}

// NewSealed wraps inner with at-rest encryption using the given 32-byte key.
func NewSealed(inner Store, key []byte) (*Sealed, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, aead: aead, nonceSize: aead.NonceSize()}, nil
}

func (s *Sealed) Get(key string) (string, bool, error) {
	sealed, ok, err := s.inner.Get(key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, err := s.open(sealed)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

func (s *Sealed) Set(key, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	return s.inner.Set(key, sealed)
}

func (s *Sealed) SetAll(values map[string]string) error {
	sealed := make(map[string]string, len(values))
	for k, v := range values {
		sv, err := s.seal(v)
		if err != nil {
			return err
		}
		sealed[k] = sv
	}
	return s.inner.SetAll(sealed)
}

func (s *Sealed) RemoveAll(keys ...string) error {
	return s.inner.RemoveAll(keys...)
}

func (s *Sealed) seal(plain string) (string, error) {
	nonce := make([]byte, s.nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	box := s.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawStdEncoding.EncodeToString(box), nil
}

func (s *Sealed) open(stored string) (string, error) {
	box, err := base64.RawStdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("%w: bad encoding", ErrCorrupt)
	}
	if len(box) < s.nonceSize {
		return "", fmt.Errorf("%w: truncated value", ErrCorrupt)
	}
	nonce, ciphertext := box[:s.nonceSize], box[s.nonceSize:]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Wrong key and tampered data are indistinguishable here.
		return "", ErrSealKey
	}
	return string(plain), nil
}
