package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindweek/internal/auth"
)

// RequireAuthenticated gates routes behind the session store's
// published state. Requests during startup get a retryable 503.
func RequireAuthenticated(store *auth.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch store.StateNow() {
		case auth.Initializing:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Still starting up. Please try again in a moment.",
			})
		case auth.Unauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Please sign in first.",
			})
		default:
			c.Next()
		}
	}
}
