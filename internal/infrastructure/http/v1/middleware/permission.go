package middleware

import (
	"github.com/gin-gonic/gin"

	"apikit/internal/core/security"
)

// RequireRole rejects requests whose user does not hold role. Mount it after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := security.RequireRole(c.Request.Context(), role); err != nil {
			abortWith(c, err)
			return
		}
		c.Next()
	}
}
