package utils

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewBearerToken returns an opaque capability token for a registro.
func NewBearerToken() string {
	return uuid.NewString()
}

// NewAccessCode returns a human-entry login code of n characters. The
// alphabet omits look-alikes (0/O, 1/I) since people type these by hand.
func NewAccessCode(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = accessCodeAlphabet[int(b[i])%len(accessCodeAlphabet)]
	}
	return string(b), nil
}
