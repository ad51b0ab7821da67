// Package auth implements credential verification: registration, login and
// the middleware attaching the session identity to incoming requests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okorolenko/tinylink/internal/hasher"
	"github.com/okorolenko/tinylink/internal/models"
	"github.com/okorolenko/tinylink/internal/session"
	"github.com/okorolenko/tinylink/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) error
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

// Auth verifies credentials against the user store and issues logical
// sessions through the session codec.
type Auth struct {
	db    userKeeper
	codec *session.Codec
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates an Auth service over the given user store and session codec.
func New(db userKeeper, codec *session.Codec) *Auth {
	return &Auth{
		db:    db,
		codec: codec,
	}
}

func validateCredential(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", models.ErrValidation, name)
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return fmt.Errorf("%w: %s cannot include empty spaces", models.ErrValidation, name)
	}

	return nil
}

// Register creates a new account. It fails with models.ErrValidation for
// empty or whitespace-containing fields and with models.ErrConflict when
// the email is already registered. The caller is expected to start a
// session for the returned user.
func (a *Auth) Register(ctx context.Context, email, password string) (*user.User, error) {
	if err := validateCredential("email", email); err != nil {
		return nil, err
	}
	if err := validateCredential("password", password); err != nil {
		return nil, err
	}

	passwordHash, err := hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	usr := &user.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
	}
	if err := a.db.CreateUser(ctx, usr); err != nil {
		return nil, err
	}

	return usr, nil
}

// Login verifies the credentials. An unknown email and a wrong password
// both fail with the same models.ErrAuth so callers cannot enumerate users.
func (a *Auth) Login(ctx context.Context, email, password string) (*user.User, error) {
	usr, found, err := a.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrAuth
	}

	if err := hasher.Verify(usr.PasswordHash, password); err != nil {
		return nil, models.ErrAuth
	}

	return usr, nil
}

// StartSession encodes the user's identity into a signed session token.
func (a *Auth) StartSession(userID string) (string, error) {
	return a.codec.Encode(userID)
}

// WithIdentity is an HTTP middleware decoding the session cookie into the
// request context. Requests without a valid token pass through as
// anonymous - the empty user ID.
func (a *Auth) WithIdentity(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		sess := a.codec.FromRequest(request)

		ctx := context.WithValue(request.Context(), UserIDKey, sess.UserID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// SessionFromContext rebuilds the typed session from a request context
// populated by WithIdentity.
func SessionFromContext(ctx context.Context) models.Session {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return models.Session{}
	}

	return models.Session{UserID: userID}
}
