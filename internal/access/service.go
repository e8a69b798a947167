// Package access owns the payment-to-access linkage: who may read the book,
// and what proof it took to get there.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theocluzel/esclavedigital/internal/models"
	"github.com/theocluzel/esclavedigital/internal/payment"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so login failures don't leak which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPaymentNotConfirmed means the checkout session did not verify
	// as paid, so no access was granted.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
)

// Service drives account state: created -> payment_pending -> access_granted.
type Service struct {
	accounts store.AccountStore
	events   store.EventStore
	verifier payment.Verifier

	bcryptCost    int
	grantOnCreate bool
}

// NewService wires the access flow. grantOnCreate reproduces the revision
// where account creation right after checkout grants access directly.
func NewService(accounts store.AccountStore, events store.EventStore, verifier payment.Verifier, bcryptCost int, grantOnCreate bool) *Service {
	if bcryptCost <= 0 {
		bcryptCost = 12
	}
	return &Service{
		accounts:      accounts,
		events:        events,
		verifier:      verifier,
		bcryptCost:    bcryptCost,
		grantOnCreate: grantOnCreate,
	}
}

// CreateAccount registers a new reader. Returns store.ErrAlreadyExists when
// the email is taken.
func (s *Service) CreateAccount(email, password string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &models.Account{
		Email:        util.NormalizeEmail(email),
		PasswordHash: string(hash),
		AccessState:  models.AccessCreated,
		Platform:     "web",
	}
	if s.grantOnCreate {
		now := time.Now()
		a.AccessState = models.AccessGranted
		a.AccessGrantedAt = &now
	}

	if err := s.accounts.Create(a); err != nil {
		return nil, err
	}

	if s.grantOnCreate {
		_ = s.events.Record(&models.AccessEvent{
			AccountID: a.ID,
			Source:    models.GrantSourceCreation,
		})
	}
	return a, nil
}

// Authenticate verifies credentials and returns the account.
func (s *Service) Authenticate(email, password string) (*models.Account, error) {
	a, err := s.accounts.GetByEmail(util.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// GrantAccess flips the access flag after verifying the checkout session is
// paid. Idempotent: granting an already-granted account is a no-op success.
// Returns store.ErrNotFound for unknown accounts and ErrPaymentNotConfirmed
// when the processor reports anything but "paid".
func (s *Service) GrantAccess(ctx context.Context, email, checkoutID string) error {
	a, err := s.accounts.GetByEmail(util.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if a.HasBookAccess() {
		return nil
	}

	status, err := s.verifier.VerifySession(ctx, checkoutID)
	if errors.Is(err, payment.ErrUnknownSession) {
		return ErrPaymentNotConfirmed
	}
	if err != nil {
		return err
	}
	if status != payment.StatusPaid {
		return ErrPaymentNotConfirmed
	}

	return s.grant(a, models.GrantSourceCheckout, checkoutID)
}

// GrantFromReceipt grants access after a validated App Store purchase,
// creating the account if the purchaser has none yet. iOS accounts have no
// password; they authenticate through signed access tokens.
func (s *Service) GrantFromReceipt(email, transactionID string) (*models.Account, error) {
	email = util.NormalizeEmail(email)

	a, err := s.accounts.GetByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		a = &models.Account{
			Email:       email,
			AccessState: models.AccessCreated,
			Platform:    "ios",
		}
		if err := s.accounts.Create(a); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if a.HasBookAccess() {
		return a, nil
	}
	if err := s.grant(a, models.GrantSourceIOS, transactionID); err != nil {
		return nil, err
	}
	return a, nil
}

// MarkPaymentPending moves an existing "created" account to payment_pending
// when a checkout session is opened for its email. Best effort: a purchaser
// without an account yet is the normal case.
func (s *Service) MarkPaymentPending(email string) {
	a, err := s.accounts.GetByEmail(util.NormalizeEmail(email))
	if err != nil || a.AccessState != models.AccessCreated {
		return
	}
	a.AccessState = models.AccessPaymentPending
	_ = s.accounts.Update(a)
}

func (s *Service) grant(a *models.Account, source, referenceID string) error {
	now := time.Now()
	a.AccessState = models.AccessGranted
	a.AccessGrantedAt = &now
	if err := s.accounts.Update(a); err != nil {
		return err
	}
	return s.events.Record(&models.AccessEvent{
		AccountID:   a.ID,
		Source:      source,
		ReferenceID: referenceID,
	})
}
