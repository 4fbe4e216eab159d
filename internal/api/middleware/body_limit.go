package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smaraba1/payroll-processing/pkg/response"
)

// CodeBodyTooLarge envelope code for an oversized request body.
const CodeBodyTooLarge = 10005

// BodyLimit rejects a declared Content-Length above maxBytes up front and caps
// streamed bodies so binding fails once the limit is crossed. A non-positive
// maxBytes disables the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "Request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
