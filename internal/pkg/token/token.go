package token

import (
	"crypto/rand"
	"encoding/hex"
)

// SessionTokenBytes is the entropy of a session identifier (32 bytes,
// 64 hex characters on the wire).
const SessionTokenBytes = 32

// NewSessionToken generates an opaque, cryptographically-random session id.
func NewSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
