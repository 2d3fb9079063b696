package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ledgerai/merchant-ledger/internal/telegramauth"
)

const (
	// SessionClaimsKey is the key used to store session claims in the context
	SessionClaimsKey = "session_claims"
)

// SessionAuth middleware requires a valid Bearer session token on every
// request it guards
func SessionAuth(logger *slog.Logger, sessions *telegramauth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "Missing bearer token"},
			})
			return
		}

		claims, err := sessions.Verify(token)
		if err != nil {
			logger.Warn("Rejected request with invalid session token",
				"correlation_id", GetCorrelationID(c),
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "Invalid session token"},
			})
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Next()
	}
}

// GetSessionClaims retrieves the session claims from the gin context if present
func GetSessionClaims(c *gin.Context) *telegramauth.SessionClaims {
	if v, exists := c.Get(SessionClaimsKey); exists {
		if claims, ok := v.(*telegramauth.SessionClaims); ok {
			return claims
		}
	}
	return nil
}
