package api

import (
	"github.com/flexprice/paycycle/internal/api/cron"
	v1 "github.com/flexprice/paycycle/internal/api/v1"
	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/pyroscope"
	"github.com/flexprice/paycycle/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Membership *v1.MembershipHandler

	// Cron jobs
	CronBillingCycle *cron.BillingCycleHandler
	CronPayment      *cron.PaymentHandler
}

// NewRouter builds the engine. profiler may be nil.
func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, profiler *pyroscope.Service) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.SentryScopeMiddleware,
		middleware.PyroscopeMiddleware(profiler),
		middleware.ErrorHandler(logger),
	)

	router.GET("/health", handlers.Health.Health)

	v1Router := router.Group("/v1")

	membership := v1Router.Group("/customers/:customer_id/membership")
	{
		membership.GET("", handlers.Membership.GetStatus)
		membership.POST("/trial", handlers.Membership.StartTrial)
		membership.POST("/cancel", handlers.Membership.Cancel)
		membership.POST("/restart", handlers.Membership.Restart)
	}

	// Cron routes
	cronGroup := v1Router.Group("/cron")
	cronGroup.Use(middleware.SystemUserMiddleware)
	{
		billingCycles := cronGroup.Group("/billing-cycles")
		billingCycles.POST("/aging", handlers.CronBillingCycle.RunAging)

		payments := cronGroup.Group("/payments")
		payments.POST("/due", handlers.CronPayment.ProcessDuePayments)
		payments.POST("/:id/process", handlers.CronPayment.ProcessPayment)
	}

	return router
}
