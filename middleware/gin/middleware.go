// Package ginmw adapts the skema request validation middleware to gin.
package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

// ValidateJSON parses the request body with p, stores the result in the request context and
// aborts with 400 and the issue payload when the body is invalid.
func ValidateJSON[T any](p skema.Parser[T], opt skema.ParseOpt) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := middleware.Parse(c.Request, p, opt)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorBody(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithParsed(c.Request.Context(), v))
		c.Next()
	}
}

// GetParsed fetches the body stored by ValidateJSON.
func GetParsed[T any](c *gin.Context) (T, bool) {
	return middleware.ParsedFromContext[T](c.Request.Context())
}
