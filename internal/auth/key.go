package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// keyBytes is the entropy of a token key; the hex form is twice as long.
const keyBytes = 20

// GenerateKey returns a new 40-character hex token key from crypto/rand.
func GenerateKey() (string, error) {
	b := make([]byte, keyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
