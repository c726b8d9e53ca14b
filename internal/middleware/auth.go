// Package middleware provides HTTP middleware for token authentication,
// logging and request hardening.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pandeptwidyaop/pixi-server/internal/services"
)

// TokenQueryParam is the query parameter that may carry the access token.
const TokenQueryParam = "token"

// TokenRequired rejects requests that do not carry a valid access token.
func TokenRequired(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.ValidateToken(requestToken(c)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestToken reads "Authorization: token <t>", "Authorization: Bearer <t>"
// or the token query parameter, in that order.
func requestToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && (strings.EqualFold(scheme, "token") || strings.EqualFold(scheme, "bearer")) {
			return strings.TrimSpace(value)
		}
	}
	return c.Query(TokenQueryParam)
}
