// Package session maps opaque cookie tokens to authenticated accounts.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/theocluzel/esclavedigital/internal/models"
	"github.com/theocluzel/esclavedigital/internal/store"

	"github.com/google/uuid"
)

// ErrNoSession is returned for unknown, expired or revoked tokens.
var ErrNoSession = errors.New("no valid session")

// Manager issues and resolves login sessions with a fixed TTL.
type Manager struct {
	sessions store.SessionStore
	ttl      time.Duration
	now      func() time.Time
}

// NewManager builds a Manager. ttl must be positive.
func NewManager(sessions store.SessionStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{sessions: sessions, ttl: ttl, now: time.Now}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session for the account and returns its opaque token.
func (m *Manager) Issue(accountID uint) (string, error) {
	now := m.now()
	s := &models.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.Create(s); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return s.ID, nil
}

// Resolve maps a token to its account id. Expired and revoked sessions
// behave exactly like absent ones.
func (m *Manager) Resolve(token string) (uint, error) {
	if token == "" {
		return 0, ErrNoSession
	}
	s, err := m.sessions.Get(token)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("resolve session: %w", err)
	}
	if !s.Active(m.now()) {
		return 0, ErrNoSession
	}
	return s.AccountID, nil
}

// Destroy revokes a session. Destroying an absent session is not an error.
func (m *Manager) Destroy(token string) error {
	if token == "" {
		return nil
	}
	return m.sessions.Revoke(token)
}
