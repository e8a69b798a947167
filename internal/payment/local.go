package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/theocluzel/esclavedigital/internal/store"
)

// LocalVerifier answers from the checkout record store. Only records marked
// simulated are authoritative here; real sessions fall through to the
// processor, whose status may have moved since the record was written.
type LocalVerifier struct {
	Checkouts store.CheckoutStore
}

func (v *LocalVerifier) VerifySession(ctx context.Context, id string) (Status, error) {
	rec, err := v.Checkouts.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUnknownSession
	}
	if err != nil {
		return "", fmt.Errorf("local checkout lookup: %w", err)
	}
	if !rec.Simulated {
		return "", ErrUnknownSession
	}
	return Status(rec.PaymentStatus), nil
}
