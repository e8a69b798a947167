package store

import (
	"errors"
	"fmt"

	"github.com/theocluzel/esclavedigital/internal/models"

	"gorm.io/gorm"
)

// NewGormStores returns durable stores over the given database.
func NewGormStores(db *gorm.DB) *Stores {
	return &Stores{
		Accounts:  &gormAccounts{db: db},
		Sessions:  &gormSessions{db: db},
		Chapters:  &gormChapters{db: db},
		Checkouts: &gormCheckouts{db: db},
		Events:    &gormEvents{db: db},
		Audit:     &gormAudit{db: db},
	}
}

// ---------- accounts ----------

type gormAccounts struct {
	db *gorm.DB
}

func (g *gormAccounts) Create(a *models.Account) error {
	var count int64
	if err := g.db.Model(&models.Account{}).
		Where("LOWER(email) = LOWER(?)", a.Email).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := g.db.Create(a).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (g *gormAccounts) GetByEmail(email string) (*models.Account, error) {
	var a models.Account
	err := g.db.Where("LOWER(email) = LOWER(?)", email).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

func (g *gormAccounts) GetByID(id uint) (*models.Account, error) {
	var a models.Account
	err := g.db.First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &a, nil
}

func (g *gormAccounts) Update(a *models.Account) error {
	if err := g.db.Save(a).Error; err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (g *gormAccounts) List() ([]models.Account, error) {
	var accounts []models.Account
	if err := g.db.Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// ---------- sessions ----------

type gormSessions struct {
	db *gorm.DB
}

func (g *gormSessions) Create(s *models.Session) error {
	if err := g.db.Create(s).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (g *gormSessions) Get(id string) (*models.Session, error) {
	var s models.Session
	err := g.db.First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (g *gormSessions) Revoke(id string) error {
	// update on a missing row is a no-op: logout stays idempotent
	if err := g.db.Model(&models.Session{}).
		Where("id = ?", id).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ---------- chapters ----------

type gormChapters struct {
	db *gorm.DB
}

func (g *gormChapters) Get(id int) (*models.Chapter, error) {
	var ch models.Chapter
	err := g.db.First(&ch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return &ch, nil
}

// ---------- checkout records ----------

type gormCheckouts struct {
	db *gorm.DB
}

func (g *gormCheckouts) Put(rec *models.CheckoutRecord) error {
	if err := g.db.Save(rec).Error; err != nil {
		return fmt.Errorf("save checkout record: %w", err)
	}
	return nil
}

func (g *gormCheckouts) Get(sessionID string) (*models.CheckoutRecord, error) {
	var rec models.CheckoutRecord
	err := g.db.First(&rec, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get checkout record: %w", err)
	}
	return &rec, nil
}

// ---------- access events ----------

type gormEvents struct {
	db *gorm.DB
}

func (g *gormEvents) Record(e *models.AccessEvent) error {
	if err := g.db.Create(e).Error; err != nil {
		return fmt.Errorf("record access event: %w", err)
	}
	return nil
}

// ---------- audit log ----------

type gormAudit struct {
	db *gorm.DB
}

func (g *gormAudit) RecordAudit(l *models.AuditLog) error {
	if err := g.db.Create(l).Error; err != nil {
		return fmt.Errorf("record audit log: %w", err)
	}
	return nil
}
