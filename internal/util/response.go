package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the body of a successful JSON reply.
type Response map[string]interface{}

// Success writes a 200 JSON reply.
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, data)
}

// Error writes an error reply with a user-facing message.
// The underlying cause, if any, is the caller's job to log.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"message": msg})
}
