package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/services"
)

const (
	// ContextProfile is the gin context key the resolved UserProfile is
	// stored under.
	ContextProfile = "profile"
	// ContextClaims holds the validated session claims.
	ContextClaims = "claims"
)

// Auth validates the Bearer session token and resolves the session's
// UserProfile into the request context. Requests without a live profile are
// rejected before any core computation.
func Auth(auth *services.AuthService, sessions *services.SessionRegistry, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "MISSING_TOKEN",
					"message": "Authorization header with Bearer token required",
				},
			})
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.WithError(err).Debug("Token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Session token is invalid or expired",
				},
			})
			return
		}

		profile, ok := sessions.Get(claims.SessionID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "SESSION_EXPIRED",
					"message": "Session no longer exists, log in again",
				},
			})
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextProfile, profile)
		c.Next()
	}
}
