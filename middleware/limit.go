package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the text fields and part headers.
const multipartOverhead = 64 * 1024

// MaxBodySize caps request bodies at maxUploadSize plus form overhead.
// maxUploadSize <= 0 leaves bodies unbounded.
func MaxBodySize(maxUploadSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxUploadSize > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+multipartOverhead)
		}
		c.Next()
	}
}
