// Package storage declares the keyed-store interface implemented by the
// memory, file and PostgreSQL backends.
package storage

import (
	"context"
	"time"

	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/user"
)

// Storage is the union of the credential-store and URL-store operations.
// All mutating URL operations are atomic with respect to their uniqueness
// or counting semantics.
type Storage interface {
	// CreateUser stores a new user. Fails with models.ErrConflict if a
	// user with the same normalized email already exists.
	CreateUser(ctx context.Context, usr *user.User) error

	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	// GetUserByEmail looks a user up by normalized (lower-cased) email.
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	// InsertURL inserts a record keyed by its code. Fails with
	// models.ErrCodeExists if the code is already taken; the existence
	// check and the insert form one critical section.
	InsertURL(ctx context.Context, record *models.URLRecord) error

	FindURLByCode(ctx context.Context, code string) (models.URLRecord, bool, error)

	// UpdateURL replaces the record's target and creation date and resets
	// its visit count. The owner is never changed. Fails with
	// models.ErrNotFound if the code is absent.
	UpdateURL(ctx context.Context, code, longURL string, createdAt time.Time) (models.URLRecord, error)

	// DeleteURL removes the record. Deleting an absent code is a no-op.
	DeleteURL(ctx context.Context, code string) error

	// FindURLsByOwner returns an unordered snapshot of the records whose
	// owner matches.
	FindURLsByOwner(ctx context.Context, ownerID string) ([]models.URLRecord, error)

	// IncrementVisits atomically advances the record's visit count and
	// returns the updated record. Fails with models.ErrNotFound if the
	// code is absent; nothing is mutated in that case.
	IncrementVisits(ctx context.Context, code string) (models.URLRecord, error)

	Ping(ctx context.Context) error

	Close() error
}
