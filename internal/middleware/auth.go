package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/theocluzel/esclavedigital/internal/models"
	"github.com/theocluzel/esclavedigital/internal/session"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
)

const currentAccountKey = "currentAccount"

// RequireSession resolves the session cookie to an account and puts it in
// the gin context. It does not look at the access flag; protected handlers
// layer that check on top.
func RequireSession(cookieName string, mgr *session.Manager, accounts store.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			util.Error(c, http.StatusUnauthorized, "Non autorisé")
			c.Abort()
			return
		}

		accountID, err := mgr.Resolve(token)
		if errors.Is(err, session.ErrNoSession) {
			util.Error(c, http.StatusUnauthorized, "Non autorisé")
			c.Abort()
			return
		}
		if err != nil {
			log.Printf("resolve session: %v", err)
			util.Error(c, http.StatusInternalServerError, "Erreur interne")
			c.Abort()
			return
		}

		account, err := accounts.GetByID(accountID)
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusUnauthorized, "Non autorisé")
			c.Abort()
			return
		}
		if err != nil {
			log.Printf("load account %d: %v", accountID, err)
			util.Error(c, http.StatusInternalServerError, "Erreur interne")
			c.Abort()
			return
		}

		c.Set(currentAccountKey, account)
		c.Next()
	}
}

// CurrentAccount returns the account RequireSession stored in the context.
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(currentAccountKey)
	if !ok {
		return nil, false
	}
	a, ok := v.(*models.Account)
	if !ok || a == nil {
		return nil, false
	}
	return a, true
}
