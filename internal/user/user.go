// Package user defines the user model used throughout the application,
// particularly for authentication and ownership of shortened URLs.
package user

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Email is unique across all users. It is normalized to lower case
	// before storage and lookup.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// The plaintext is never retained.
	PasswordHash string `json:"password_hash"`
}
