// Package token verifies and issues the HS256 access tokens that identify a caller.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired or signed with another key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoSubject is returned when a valid token does not name a user.
	ErrNoSubject = errors.New("token has no subject")
)

// Claims are the access token claims. User id is read from "sub", falling back to "id".
type Claims struct {
	UID string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the identity carried by the claims.
func (c *Claims) UserID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UID
}

// Manager verifies and signs tokens with a shared secret.
type Manager struct {
	secret []byte
	now    func() time.Time
}

func NewManager(secret string) *Manager {
	return &Manager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Verify parses tokenString and returns the user id it carries.
func (m *Manager) Verify(tokenString string) (string, error) {
	const op = "token.Manager.Verify"

	var claims Claims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	userID := claims.UserID()
	if userID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoSubject)
	}

	return userID, nil
}

// Issue signs a token for userID that expires after ttl.
func (m *Manager) Issue(userID string, ttl time.Duration) (string, error) {
	const op = "token.Manager.Issue"

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	return signed, nil
}
