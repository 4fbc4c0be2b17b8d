package utils

import (
	"crypto/rand"
	"math/big"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns a random uppercase-alphanumeric password of the
// given length (8 if length <= 0).
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = 8
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
