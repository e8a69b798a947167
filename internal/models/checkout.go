package models

import "time"

// Payment statuses mirrored from the processor.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// CheckoutRecord is the local mirror of a processor checkout session.
// Simulated records are authoritative (test rails never reach the processor);
// real ones are a pending trace, the processor stays the source of truth.
type CheckoutRecord struct {
	SessionID     string `gorm:"primaryKey;size:128"`
	PaymentStatus string `gorm:"size:32;not null"`
	Email         string `gorm:"size:255;index"`
	Format        string `gorm:"size:32"`
	FirstNameEnc  string `gorm:"size:512"` // AES+base64
	LastNameEnc   string `gorm:"size:512"` // AES+base64
	Simulated     bool   `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
