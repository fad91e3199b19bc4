package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/foia-desk-api/internal/middleware"
	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextOfficerKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext captures the mutation origin for the audit trail. The
// officer id is only present on authenticated routes.
func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := claimsFromContext(c); claims != nil {
		id := claims.OfficerID
		actor.OfficerID = &id
	}
	return actor
}
