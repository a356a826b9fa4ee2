package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/toolforge-ai/toolforge/pkg/logger"
)

// loggerMiddleware tags every request with an id and attaches a scoped
// logger to the request context so handlers and use cases inherit it.
func loggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)
		scoped := log.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), scoped))
		c.Next()
	}
}
