// Package session implements the opaque, tamper-evident session token
// carried in a cookie. The token embeds the user ID signed with HMAC,
// there is no server-side session table - the cookie is the session state.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/okorolenko/tinylink/internal/models"
)

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Codec encodes and decodes session tokens.
type Codec struct {
	// cookieName is the name of the cookie used to store the token.
	cookieName string

	// signingSecretKey is the key used to sign tokens.
	signingSecretKey []byte

	// tokenTTL bounds the lifetime of issued tokens.
	tokenTTL time.Duration
}

// New creates a Codec with the given cookie name, signing secret and token
// lifetime.
func New(cookieName string, signingSecretKey []byte, tokenTTL time.Duration) *Codec {
	return &Codec{
		cookieName:       cookieName,
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
	}
}

// Encode produces a signed token embedding the given user ID.
func (c *Codec) Encode(userID string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.tokenTTL)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(c.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Decode extracts the user ID from a token. It returns an empty string for
// a missing, malformed, tampered or expired token - callers treat the empty
// string as "anonymous". It never fails for malformed input.
func (c *Codec) Decode(tokenString string) string {
	if tokenString == "" {
		return ""
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return ""
	}

	return claims.UserID
}

// FromRequest builds a Session from the request's session cookie.
// A request without a valid cookie yields an anonymous session.
func (c *Codec) FromRequest(request *http.Request) models.Session {
	cookie, err := request.Cookie(c.cookieName)
	if err != nil {
		return models.Session{}
	}

	return models.Session{UserID: c.Decode(cookie.Value)}
}

// SetCookie attaches the session token to the response.
func (c *Codec) SetCookie(response http.ResponseWriter, token string) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     c.cookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		},
	)
}

// ClearCookie instructs the client to discard the session cookie.
// Logout has no server state to clear.
func (c *Codec) ClearCookie(response http.ResponseWriter) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     c.cookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		},
	)
}
