package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRefreshToken returns a random opaque token of nBytes entropy
// (32 bytes, 256 bit, by default).
func NewRefreshToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
