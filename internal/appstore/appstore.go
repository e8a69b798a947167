// Package appstore is the thin boundary to Apple receipt validation.
package appstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/theocluzel/esclavedigital/internal/config"
)

// ErrInvalidReceipt means Apple rejected the receipt.
var ErrInvalidReceipt = errors.New("invalid app store receipt")

// Validator checks an in-app purchase receipt with the App Store.
type Validator interface {
	ValidateReceipt(ctx context.Context, receipt string) error
}

// HTTPValidator posts the receipt to the verifyReceipt endpoint.
type HTTPValidator struct {
	cfg    config.AppStoreConfig
	client *http.Client
}

// NewHTTPValidator builds a validator against the configured endpoint.
func NewHTTPValidator(cfg config.AppStoreConfig) *HTTPValidator {
	return &HTTPValidator{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type verifyRequest struct {
	ReceiptData string `json:"receipt-data"`
	Password    string `json:"password,omitempty"`
}

type verifyResponse struct {
	Status int `json:"status"`
}

// ValidateReceipt returns nil for a valid receipt, ErrInvalidReceipt when
// Apple rejects it, and a wrapped transport error otherwise.
func (v *HTTPValidator) ValidateReceipt(ctx context.Context, receipt string) error {
	body, err := json.Marshal(verifyRequest{
		ReceiptData: receipt,
		Password:    v.cfg.SharedSecret,
	})
	if err != nil {
		return fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("verify receipt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verify receipt: unexpected status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}
	// status 0 means the receipt is valid
	if out.Status != 0 {
		return fmt.Errorf("%w: status %d", ErrInvalidReceipt, out.Status)
	}
	return nil
}
