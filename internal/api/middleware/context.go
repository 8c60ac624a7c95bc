package middleware

import (
	"context"

	"github.com/feeflow/feeflow/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestContext seeds the request-scoped context with a request ID and the
// acting user so downstream writes carry attribution.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = types.GenerateUUID()
		}
		ctx = context.WithValue(ctx, types.CtxRequestID, requestID)

		if userID := c.GetHeader("X-User-ID"); userID != "" {
			ctx = context.WithValue(ctx, types.CtxUserID, userID)
		}

		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
