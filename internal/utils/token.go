package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// SecureTokenBytes is the entropy of session and reset tokens.
const SecureTokenBytes = 32

// GenerateSecureToken returns 32 random bytes from the CSPRNG as 64 hex characters.
func GenerateSecureToken() (string, error) {
	buf := make([]byte, SecureTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
