package payment

import (
	"context"
	"fmt"

	"github.com/theocluzel/esclavedigital/internal/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// CheckoutRequest carries the purchaser details for a new checkout session.
type CheckoutRequest struct {
	Format    string
	Email     string
	FirstName string
	LastName  string
	// SuccessURL and CancelURL are derived from the incoming request host.
	SuccessURL string
	CancelURL  string
}

// StripeClient creates and retrieves Stripe checkout sessions.
type StripeClient struct {
	api *client.API
	cfg config.StripeConfig
}

// NewStripeClient builds a client with the configured secret key.
func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeClient{api: api, cfg: cfg}
}

// CreateCheckoutSession opens a one-off card payment session for the book.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(s.cfg.ProductName),
					Description: stripe.String(fmt.Sprintf("Format de lecture : %s", req.Format)),
				},
				UnitAmount: stripe.Int64(s.cfg.UnitAmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.Email),
	}
	params.Context = ctx
	params.AddMetadata("format", req.Format)
	params.AddMetadata("firstname", req.FirstName)
	params.AddMetadata("lastname", req.LastName)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create checkout session: %v", ErrUpstream, err)
	}
	return sess.ID, nil
}

// VerifySession asks Stripe for the payment status of a checkout session.
func (s *StripeClient) VerifySession(ctx context.Context, id string) (Status, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return "", fmt.Errorf("%w: retrieve checkout session: %v", ErrUpstream, err)
	}
	return Status(sess.PaymentStatus), nil
}
