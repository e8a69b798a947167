package models

import "time"

// Access states an account moves through. The flow only ever moves forward:
// created -> payment_pending -> access_granted. There is no revoke path.
const (
	AccessCreated        = "created"
	AccessPaymentPending = "payment_pending"
	AccessGranted        = "access_granted"
)

// Account represents a reader account, keyed by email.
type Account struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	AccessState  string `gorm:"size:32;index;not null;default:created"`
	Platform     string `gorm:"size:16;default:web"` // web / ios

	AccessGrantedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasBookAccess reports whether purchased content may be served.
func (a *Account) HasBookAccess() bool {
	return a.AccessState == AccessGranted
}
