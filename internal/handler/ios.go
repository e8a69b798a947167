package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/theocluzel/esclavedigital/internal/access"
	"github.com/theocluzel/esclavedigital/internal/appstore"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
)

// IOSHandler processes App Store purchases: validate the receipt, grant
// access, hand back a signed token the app stores locally.
type IOSHandler struct {
	Validator appstore.Validator
	Svc       *access.Service
	JWTSecret string
}

func NewIOSHandler(validator appstore.Validator, svc *access.Service, jwtSecret string) *IOSHandler {
	return &IOSHandler{Validator: validator, Svc: svc, JWTSecret: jwtSecret}
}

type iosPurchaseReq struct {
	Email         string `json:"email" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
	Receipt       string `json:"receipt" binding:"required"`
}

// Purchase validates an in-app purchase and grants book access.
func (h *IOSHandler) Purchase(c *gin.Context) {
	var req iosPurchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Paramètres invalides")
		return
	}
	email := util.NormalizeEmail(req.Email)
	if err := util.ValidateEmail(email); err != nil {
		util.Error(c, http.StatusBadRequest, "Adresse email invalide")
		return
	}

	if err := h.Validator.ValidateReceipt(c.Request.Context(), req.Receipt); err != nil {
		if errors.Is(err, appstore.ErrInvalidReceipt) {
			util.Error(c, http.StatusUnauthorized, "Reçu d'achat invalide")
			return
		}
		log.Printf("validate receipt for %q: %v", email, err)
		util.Error(c, http.StatusInternalServerError, "Erreur lors de la validation de l'achat")
		return
	}

	account, err := h.Svc.GrantFromReceipt(email, req.TransactionID)
	if err != nil {
		log.Printf("grant ios access %q: %v", email, err)
		util.Error(c, http.StatusInternalServerError, "Une erreur est survenue. Notre équipe a été notifiée.")
		return
	}

	token, err := util.GenerateAccessToken(h.JWTSecret, account.ID, account.Email, 365*24*time.Hour)
	if err != nil {
		log.Printf("access token for account %d: %v", account.ID, err)
		util.Error(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	util.Success(c, util.Response{
		"success":      true,
		"message":      "Achat validé. Vérifiez votre email pour les instructions.",
		"access_token": token,
	})
}
