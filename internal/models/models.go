// Package models holds the data records, request/response DTOs and the
// error taxonomy shared by the service, storage and transport layers.
package models

import (
	"errors"
	"time"
)

// URLRecord is a single shortened URL owned by a user.
type URLRecord struct {
	// Code is the unique short key identifying the record.
	Code string `json:"code"`

	// LongURL is the redirect target supplied by the owner.
	LongURL string `json:"long_url"`

	// OwnerID is the ID of the user who created the record.
	// It never changes after creation, an update does not transfer ownership.
	OwnerID string `json:"owner_id"`

	// CreatedAt is the day the record was created or last replaced.
	// Date-only granularity.
	CreatedAt time.Time `json:"created_at"`

	// VisitCount counts successful redirect resolutions.
	VisitCount int64 `json:"visit_count"`
}

// Session is the authenticated identity claim carried between requests.
// An empty UserID means the caller is anonymous.
type Session struct {
	UserID string
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ShortenRequest struct {
	URL string `json:"url" validate:"required"`
}

type UpdateURLRequest struct {
	URL string `json:"url" validate:"required"`
}

type ShortenResponse struct {
	Result string `json:"result"`
}

// UserURL is the owner-facing projection of a URLRecord.
type UserURL struct {
	ShortURL    string `json:"short_url"`
	OriginalURL string `json:"original_url"`
	Visits      int64  `json:"visits"`
	CreatedAt   string `json:"created_at"`
}

type UserUrls []UserURL

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrValidation reports malformed input: empty or whitespace-containing
// credentials, an URL which trims to empty.
var ErrValidation = errors.New("invalid input")

// ErrConflict reports an already registered email.
var ErrConflict = errors.New("already exists")

// ErrAuth reports bad credentials. The cause is deliberately not
// differentiated between unknown email and wrong password.
var ErrAuth = errors.New("wrong email or password")

// ErrForbidden reports an action on a record the caller does not own,
// or a protected action attempted anonymously.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound reports an unknown short code.
var ErrNotFound = errors.New("not found")

// ErrCodeExists is returned by storage when a generated short code is
// already taken, the caller regenerates and retries.
var ErrCodeExists = errors.New("short code already exists")

// ErrCodeSpaceExhausted is returned when a unique short code could not be
// generated after the configured number of attempts.
var ErrCodeSpaceExhausted = errors.New("the number of attempts to generate a unique key has been exceeded")
