package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/theocluzel/esclavedigital/internal/access"
	"github.com/theocluzel/esclavedigital/internal/config"
	"github.com/theocluzel/esclavedigital/internal/session"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves login, logout, check-auth and account creation.
type AuthHandler struct {
	Svc      *access.Service
	Sessions *session.Manager
	Accounts store.AccountStore
	Cookie   config.SessionConfig
}

func NewAuthHandler(svc *access.Service, sessions *session.Manager, accounts store.AccountStore, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		Svc:      svc,
		Sessions: sessions,
		Accounts: accounts,
		Cookie:   cookie,
	}
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Paramètres invalides")
		return
	}

	account, err := h.Svc.Authenticate(req.Email, req.Password)
	if errors.Is(err, access.ErrInvalidCredentials) {
		util.Error(c, http.StatusUnauthorized, "Email ou mot de passe incorrect")
		return
	}
	if err != nil {
		log.Printf("login %q: %v", req.Email, err)
		util.Error(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	token, err := h.Sessions.Issue(account.ID)
	if err != nil {
		log.Printf("issue session for account %d: %v", account.ID, err)
		util.Error(c, http.StatusInternalServerError, "Erreur interne")
		return
	}

	h.setSessionCookie(c, token, int(h.Sessions.TTL().Seconds()))
	util.Success(c, util.Response{"message": "Connexion réussie"})
}

// Logout destroys the session. Idempotent: logging out without a session
// still succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.Cookie.CookieName)
	if err == nil && token != "" {
		if err := h.Sessions.Destroy(token); err != nil {
			log.Printf("destroy session: %v", err)
		}
	}
	h.setSessionCookie(c, "", -1)
	util.Success(c, util.Response{"message": "Déconnexion réussie"})
}

// CheckAuth never fails: an absent or expired session just reads as
// unauthenticated.
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	out := util.Response{"authenticated": false, "hasBookAccess": false}

	token, err := c.Cookie(h.Cookie.CookieName)
	if err != nil || token == "" {
		util.Success(c, out)
		return
	}
	accountID, err := h.Sessions.Resolve(token)
	if err != nil {
		util.Success(c, out)
		return
	}
	account, err := h.Accounts.GetByID(accountID)
	if err != nil {
		util.Success(c, out)
		return
	}

	out["authenticated"] = true
	out["hasBookAccess"] = account.HasBookAccess()
	util.Success(c, out)
}

type createAccountReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateAccount registers a reader account after purchase.
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Paramètres invalides")
		return
	}

	email := util.NormalizeEmail(req.Email)
	if err := util.ValidateEmail(email); err != nil {
		util.Error(c, http.StatusBadRequest, "Adresse email invalide")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, "Le mot de passe doit contenir entre 8 et 72 caractères")
		return
	}

	if _, err := h.Svc.CreateAccount(email, req.Password); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			util.Error(c, http.StatusConflict, "Un compte existe déjà avec cet email")
			return
		}
		log.Printf("create account %q: %v", email, err)
		util.Error(c, http.StatusInternalServerError, "Erreur lors de la création du compte")
		return
	}

	util.Success(c, util.Response{"message": "Compte créé avec succès"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.CookieName, token, maxAge, "/", "", h.Cookie.Secure, true)
}
