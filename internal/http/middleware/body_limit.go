package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit caps JSON request bodies. Progress payloads are the
// largest legitimate bodies.
const DefaultBodyLimit = 2 << 20

// LimitBody rejects request bodies larger than n bytes once a handler reads
// past the limit.
func LimitBody(n int64) gin.HandlerFunc {
	if n <= 0 {
		n = DefaultBodyLimit
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
