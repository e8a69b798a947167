package middleware

import (
	"github.com/theocluzel/esclavedigital/internal/models"
	"github.com/theocluzel/esclavedigital/internal/store"

	"github.com/gin-gonic/gin"
)

// Audit records authenticated API operations. Best effort: a failed write
// never blocks the request itself.
func Audit(db store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		account, ok := CurrentAccount(c)
		if !ok {
			return
		}
		accountID := account.ID

		_ = db.RecordAudit(&models.AuditLog{
			AccountID: &accountID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
	}
}
