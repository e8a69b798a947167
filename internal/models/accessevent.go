package models

import "time"

// Grant sources.
const (
	GrantSourceCheckout = "checkout"
	GrantSourceIOS      = "ios"
	GrantSourceCreation = "creation"
)

// AccessEvent is the audit trail behind the access flag: one row per grant,
// recording what proof of payment triggered it.
type AccessEvent struct {
	ID          uint   `gorm:"primaryKey"`
	AccountID   uint   `gorm:"index;not null"`
	Source      string `gorm:"size:16;not null"` // checkout / ios / creation
	ReferenceID string `gorm:"size:128"`         // checkout session id or App Store transaction id
	CreatedAt   time.Time
}
