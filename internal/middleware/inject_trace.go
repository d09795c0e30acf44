package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jxiaof/next16-demo/internal/utils"
)

// InjectTrace tags the request with a trace id, visible to gin handlers, the request context and the client.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), utils.TraceIdKey, traceId))
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
