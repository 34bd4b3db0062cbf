package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"robolab-portal/pkg/response"
)

// BodyLimit caps the request body at maxBytes. Requests that declare a
// larger Content-Length are refused before any handler runs.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
