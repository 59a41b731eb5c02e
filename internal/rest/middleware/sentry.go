package middleware

import (
	"time"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/types"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware returns a middleware that captures panics and performance data
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryScopeMiddleware tags the request hub so captured events can be
// matched with logs. It must run after SentryMiddleware and RequestIDMiddleware.
func SentryScopeMiddleware(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		scope := hub.Scope()
		scope.SetTag("request_id", types.GetRequestID(c.Request.Context()))
		scope.SetTag("route", c.FullPath())
	}
	c.Next()
}
