package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the bcrypt input limit; longer passwords are rejected
// rather than truncated.
const MaxPasswordBytes = 72

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password mismatch")

var (
	decoyOnce sync.Once
	decoyHash []byte
)

// HashPassword hashes a plaintext password. Costs outside bcrypt's range fall
// back to the default.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports ErrPasswordMismatch for a wrong password. Any other
// error means the stored hash is unusable.
func ComparePassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// CompareDecoy spends one bcrypt comparison against a throwaway hash, so a
// login for an unknown email takes as long as one with a wrong password.
func CompareDecoy(plain string) {
	decoyOnce.Do(func() {
		decoyHash, _ = bcrypt.GenerateFromPassword([]byte("decoy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(plain))
}
