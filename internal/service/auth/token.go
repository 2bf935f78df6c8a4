package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes yields 64 hex characters, matching the cookie value size the
// frontend expects.
const tokenBytes = 32

// NewSessionToken returns a cryptographically random session identifier.
func NewSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
