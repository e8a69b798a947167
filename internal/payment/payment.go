// Package payment wraps the checkout boundary: a local override store for
// simulated sessions, with the processor as the external authority.
package payment

import (
	"context"
	"errors"
)

// Status is a processor payment status ("paid", "unpaid", ...).
type Status string

const (
	StatusPaid   Status = "paid"
	StatusUnpaid Status = "unpaid"
)

var (
	// ErrUnknownSession means the verifier has no record of the id.
	ErrUnknownSession = errors.New("unknown checkout session")
	// ErrUpstream wraps processor failures; handlers map it to a 500
	// with a generic message, the cause only goes to the log.
	ErrUpstream = errors.New("payment processor error")
)

// Verifier resolves a checkout session id to its payment status.
type Verifier interface {
	VerifySession(ctx context.Context, id string) (Status, error)
}

// FallbackVerifier checks a local authority first and only consults the
// external one for ids the local side has never seen. Keeps test and
// staging flows off the real payment rails.
type FallbackVerifier struct {
	Local    Verifier
	External Verifier
}

func (v *FallbackVerifier) VerifySession(ctx context.Context, id string) (Status, error) {
	status, err := v.Local.VerifySession(ctx, id)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, ErrUnknownSession) {
		return "", err
	}
	return v.External.VerifySession(ctx, id)
}
