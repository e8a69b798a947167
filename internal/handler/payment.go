package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/theocluzel/esclavedigital/internal/access"
	"github.com/theocluzel/esclavedigital/internal/models"
	"github.com/theocluzel/esclavedigital/internal/payment"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
)

// CheckoutCreator opens a checkout session with the processor.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (string, error)
}

// PaymentHandler covers the checkout boundary: opening sessions, verifying
// their status, and the simulated test rail.
type PaymentHandler struct {
	Creator    CheckoutCreator
	Verifier   payment.Verifier
	Checkouts  store.CheckoutStore
	Svc        *access.Service
	EncryptKey string
}

func NewPaymentHandler(creator CheckoutCreator, verifier payment.Verifier, checkouts store.CheckoutStore, svc *access.Service, encryptKey string) *PaymentHandler {
	return &PaymentHandler{
		Creator:    creator,
		Verifier:   verifier,
		Checkouts:  checkouts,
		Svc:        svc,
		EncryptKey: encryptKey,
	}
}

type checkoutReq struct {
	Format    string `json:"format" binding:"required"`
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// CreateCheckoutSession opens a processor session and mirrors it locally.
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Paramètres invalides")
		return
	}
	if err := util.ValidateFormat(req.Format); err != nil {
		util.Error(c, http.StatusBadRequest, "Format de lecture inconnu")
		return
	}
	email := util.NormalizeEmail(req.Email)
	if err := util.ValidateEmail(email); err != nil {
		util.Error(c, http.StatusBadRequest, "Adresse email invalide")
		return
	}

	base := requestBaseURL(c)
	id, err := h.Creator.CreateCheckoutSession(c.Request.Context(), payment.CheckoutRequest{
		Format:     req.Format,
		Email:      email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		SuccessURL: fmt.Sprintf("%s/success.html?format=%s&session_id={CHECKOUT_SESSION_ID}", base, req.Format),
		CancelURL:  fmt.Sprintf("%s/payment.html?format=%s", base, req.Format),
	})
	if err != nil {
		log.Printf("create checkout session: %v", err)
		util.Error(c, http.StatusInternalServerError, "Erreur lors de la création de la session de paiement")
		return
	}

	firstEnc, _ := util.EncryptField(h.EncryptKey, req.FirstName)
	lastEnc, _ := util.EncryptField(h.EncryptKey, req.LastName)
	if err := h.Checkouts.Put(&models.CheckoutRecord{
		SessionID:     id,
		PaymentStatus: models.PaymentStatusUnpaid,
		Email:         email,
		Format:        req.Format,
		FirstNameEnc:  firstEnc,
		LastNameEnc:   lastEnc,
	}); err != nil {
		log.Printf("mirror checkout session %s: %v", id, err)
	}

	// an existing account starts waiting on this payment
	h.Svc.MarkPaymentPending(email)

	util.Success(c, util.Response{"id": id})
}

// VerifyPayment reports a checkout session's payment status: local override
// store first, then the processor.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	id := c.Param("sessionId")

	status, err := h.Verifier.VerifySession(c.Request.Context(), id)
	if err != nil {
		log.Printf("verify payment %s: %v", id, err)
		util.Error(c, http.StatusInternalServerError, "Erreur lors de la vérification du paiement")
		return
	}

	util.Success(c, util.Response{"status": string(status)})
}

// TestPayment records a simulated paid session and redirects to the success
// page, without touching the payment rails. Enabled via config only.
func (h *PaymentHandler) TestPayment(c *gin.Context) {
	suffix, err := util.RandomString(24)
	if err != nil {
		log.Printf("test payment id: %v", err)
		util.Error(c, http.StatusInternalServerError, "Erreur interne")
		return
	}
	id := "cs_test_" + suffix

	if err := h.Checkouts.Put(&models.CheckoutRecord{
		SessionID:     id,
		PaymentStatus: models.PaymentStatusPaid,
		Email:         "test@example.com",
		Format:        "web",
		Simulated:     true,
	}); err != nil {
		log.Printf("store test payment %s: %v", id, err)
		util.Error(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/success.html?format=web&session_id=%s", id))
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}
