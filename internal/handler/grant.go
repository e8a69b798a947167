package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/theocluzel/esclavedigital/internal/access"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
)

// GrantHandler exposes the explicit post-payment grant operation.
type GrantHandler struct {
	Svc *access.Service
}

func NewGrantHandler(svc *access.Service) *GrantHandler {
	return &GrantHandler{Svc: svc}
}

type grantReq struct {
	Email string `json:"email" binding:"required"`
	// SessionID is the processor checkout session proving the payment.
	SessionID string `json:"session_id" binding:"required"`
}

// GrantAccess flips the access flag once the checkout session verifies as
// paid. Calling it again for the same email succeeds without effect.
func (h *GrantHandler) GrantAccess(c *gin.Context) {
	var req grantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Paramètres invalides")
		return
	}

	err := h.Svc.GrantAccess(c.Request.Context(), req.Email, req.SessionID)
	switch {
	case err == nil:
		util.Success(c, util.Response{"message": "Accès accordé"})
	case errors.Is(err, store.ErrNotFound):
		util.Error(c, http.StatusNotFound, "Compte non trouvé")
	case errors.Is(err, access.ErrPaymentNotConfirmed):
		util.Error(c, http.StatusForbidden, "Paiement non confirmé")
	default:
		log.Printf("grant access %q: %v", req.Email, err)
		util.Error(c, http.StatusInternalServerError, "Erreur interne")
	}
}
