package middleware

import (
	"context"
	"fmt"

	"github.com/flexprice/paycycle/internal/pyroscope"
	"github.com/gin-gonic/gin"
)

// PyroscopeMiddleware labels the profile samples taken while a request is served
func PyroscopeMiddleware(svc *pyroscope.Service) gin.HandlerFunc {
	if svc == nil || !svc.IsEnabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		labels := map[string]string{
			"method":   c.Request.Method,
			"endpoint": c.FullPath(),
			"handler":  fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
		}

		svc.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
