package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-registration-api/internal/models"
	appErrors "github.com/noah-isme/student-registration-api/pkg/errors"
	"github.com/noah-isme/student-registration-api/pkg/response"
)

// RequireAdmin enforces the Admin role claim on protected routes. Tokens are
// only ever issued with this role, so the check guards against foreign or
// tampered tokens that validate but carry something else.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if claims.Role != models.AdminRole {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
