package database

import (
	"fmt"

	"github.com/theocluzel/esclavedigital/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Session{},
		&models.Chapter{},
		&models.CheckoutRecord{},
		&models.AccessEvent{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
