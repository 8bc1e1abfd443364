// Package session tracks who the console is logged in as. The identity is read
// from the claims of the access token issued by the backend; the token's
// signature is the backend's concern and is not checked here.
package session

import (
	"fmt"
	"time"

	"github.com/dekarrin/vadm/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Claim names carried in access tokens besides the registered ones.
const (
	ClaimUsername = "username"
	ClaimRole     = "role"
)

// Session is the identity behind an access token.
type Session struct {
	Token    string
	UserID   string
	Username string
	Role     model.Role
	Expires  time.Time
}

// IsAdmin returns whether the session has elevated privilege.
func (s Session) IsAdmin() bool {
	return s.Role.IsAdmin()
}

// Expired returns whether the token has an expiry that is before now.
func (s Session) Expired(now time.Time) bool {
	return !s.Expires.IsZero() && now.After(s.Expires)
}

// FromToken reads the session identity out of an access token.
func FromToken(tok string) (Session, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tok, claims)
	if err != nil {
		return Session{}, fmt.Errorf("read token: %w", err)
	}

	sess := Session{Token: tok}

	sess.UserID, err = claims.GetSubject()
	if err != nil {
		return Session{}, fmt.Errorf("read subject: %w", err)
	}
	if sess.UserID == "" {
		return Session{}, fmt.Errorf("token has no subject")
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.Expires = exp.Time
	}

	if name, ok := claims[ClaimUsername].(string); ok {
		sess.Username = name
	}

	sess.Role = model.RoleUser
	if roleStr, ok := claims[ClaimRole].(string); ok {
		role, err := model.ParseRole(roleStr)
		if err != nil {
			return Session{}, fmt.Errorf("role claim: %w", err)
		}
		sess.Role = role
	}

	return sess, nil
}
