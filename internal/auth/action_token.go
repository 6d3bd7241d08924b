package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const actionTokenBytes = 32

// ActionToken is a one-shot credential. Raw goes to the user out of band and
// is never stored; Hash and ExpiresAt are persisted on the user record.
type ActionToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// NewActionToken generates a fresh token valid for ttl from now.
func NewActionToken(now time.Time, ttl time.Duration) (ActionToken, error) {
	buf := make([]byte, actionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ActionToken{}, fmt.Errorf("generate action token: %w", err)
	}
	raw := hex.EncodeToString(buf)
	return ActionToken{
		Raw:       raw,
		Hash:      HashActionToken(raw),
		ExpiresAt: now.Add(ttl),
	}, nil
}

// HashActionToken returns the stored form of a raw token.
func HashActionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GeneratePassword returns a random hex password of 2*n characters, used for
// accounts created on behalf of an employee.
func GeneratePassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
