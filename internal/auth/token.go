package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// memberTokenBytes is the entropy of a member access token.
const memberTokenBytes = 32

// NewMemberToken returns a random URL-safe token.
func NewMemberToken() (string, error) {
	b := make([]byte, memberTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate member token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// TokensEqual compares two tokens in constant time.
func TokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
