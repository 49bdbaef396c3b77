package middleware

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-ID"

func randomID() string {
	b := make([]byte, 12)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// RequestID tags every request with an opaque identifier, reusing the
// caller's when one is supplied.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = randomID()
		}

		c.Set("requestID", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}
