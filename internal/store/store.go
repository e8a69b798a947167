// Package store puts the shared mutable state of the shop behind explicit
// interfaces: SQLite via gorm in production, mutex-guarded maps in tests.
package store

import (
	"errors"

	"github.com/theocluzel/esclavedigital/internal/models"
)

var (
	// ErrNotFound is returned for unknown accounts, chapters, sessions
	// and checkout records.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating an account whose email
	// is already registered.
	ErrAlreadyExists = errors.New("already exists")
)

// AccountStore persists reader accounts, keyed by normalized email.
type AccountStore interface {
	// Create inserts a new account and fills in its ID.
	// Returns ErrAlreadyExists when the email is taken.
	Create(a *models.Account) error
	GetByEmail(email string) (*models.Account, error)
	GetByID(id uint) (*models.Account, error)
	Update(a *models.Account) error
	List() ([]models.Account, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(s *models.Session) error
	Get(id string) (*models.Session, error)
	// Revoke marks a session unusable. Revoking an absent session is not
	// an error (logout is idempotent).
	Revoke(id string) error
}

// ChapterStore serves the immutable book content.
type ChapterStore interface {
	Get(id int) (*models.Chapter, error)
}

// CheckoutStore keeps the local mirror of processor checkout sessions.
type CheckoutStore interface {
	// Put inserts or replaces a record keyed by its processor session id.
	Put(rec *models.CheckoutRecord) error
	Get(sessionID string) (*models.CheckoutRecord, error)
}

// EventStore appends to the access-grant audit trail.
type EventStore interface {
	Record(e *models.AccessEvent) error
}

// AuditStore appends to the API operation log.
type AuditStore interface {
	RecordAudit(l *models.AuditLog) error
}

// Stores bundles the interfaces handlers depend on.
type Stores struct {
	Accounts  AccountStore
	Sessions  SessionStore
	Chapters  ChapterStore
	Checkouts CheckoutStore
	Events    EventStore
	Audit     AuditStore
}
