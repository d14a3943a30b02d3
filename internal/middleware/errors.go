package middleware

import "github.com/gin-gonic/gin"

// ErrorTranslator writes the HTTP response for err
type ErrorTranslator func(c *gin.Context, err error)

// ErrorHandler answers requests that were aborted by a guard without a
// response body, using the last recorded error. Handlers that already wrote
// a response are left alone.
func ErrorHandler(translate ErrorTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !c.IsAborted() || c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		translate(c, c.Errors.Last().Err)
	}
}
