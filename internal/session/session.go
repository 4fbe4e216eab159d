// Package session holds the signed-in user of the command-line client. A
// Session is passed explicitly to whatever needs it; there is no package
// state.
package session

import (
	"errors"
	"time"

	"github.com/smaraba1/payroll-processing/internal/access"
)

var (
	ErrNoSession = errors.New("not logged in")
	ErrExpired   = errors.New("session expired, log in again")
)

// Session is the authenticated user and their bearer token.
type Session struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      access.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Can reports whether the session's role grants c.
func (s *Session) Can(c access.Capability) bool {
	return s != nil && s.Role.Can(c)
}

// Valid is false once the token has expired. A zero expiry never expires.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// FullName is "First Last", or the email when both are blank.
func (s *Session) FullName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "" || s.LastName != "":
		return s.FirstName + s.LastName
	default:
		return s.Email
	}
}
