package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/foia-desk-api/internal/models"
	appErrors "github.com/noah-isme/foia-desk-api/pkg/errors"
	"github.com/noah-isme/foia-desk-api/pkg/response"
)

// RequireRoles allows only officers holding one of the given roles.
func RequireRoles(roles ...models.OfficerRole) gin.HandlerFunc {
	allowed := make(map[models.OfficerRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextOfficerKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
