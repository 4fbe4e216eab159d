package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
)

// Authenticator is the part of the backend the manager needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	// Revoke invalidates token on the server.
	Revoke(ctx context.Context, token string) error
}

// Manager runs the login/logout lifecycle over a Store.
type Manager struct {
	auth   Authenticator
	store  *Store
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a Manager.
func NewManager(auth Authenticator, store *Store, logger *zap.Logger) *Manager {
	return &Manager{auth: auth, store: store, logger: logger, now: time.Now}
}

// Login authenticates against the backend and saves the new session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	role, err := access.ParseRole(resp.User.Role)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	expires := resp.ExpiresAt
	if expires.IsZero() && resp.ExpiresIn > 0 {
		expires = m.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	sess := &Session{
		UserID:    resp.User.ID,
		Email:     resp.User.Email,
		FirstName: resp.User.FirstName,
		LastName:  resp.User.LastName,
		Role:      role,
		Token:     resp.AccessToken,
		ExpiresAt: expires,
	}
	if err := m.store.Save(sess); err != nil {
		return nil, err
	}

	m.logger.Debug("logged in", zap.String("user_id", sess.UserID), zap.String("role", string(role)))
	return sess, nil
}

// Current returns the saved session, ErrNoSession or ErrExpired.
func (m *Manager) Current() (*Session, error) {
	sess, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if !sess.Valid(m.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

// Logout revokes the token server-side when possible and always clears the
// local session.
func (m *Manager) Logout(ctx context.Context) error {
	sess, err := m.store.Load()
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err == nil && sess.Valid(m.now()) {
		if rerr := m.auth.Revoke(ctx, sess.Token); rerr != nil {
			m.logger.Warn("server-side logout failed", zap.Error(rerr))
		}
	}
	return m.store.Clear()
}
