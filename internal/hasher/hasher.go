// Package hasher wraps bcrypt password hashing and verification.
package hasher

import (
	"golang.org/x/crypto/bcrypt"
)

// Hash returns the salted bcrypt hash of a plaintext password.
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// Verify compares a plaintext password with a stored hash.
// The comparison is constant-time.
func Verify(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
