package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/paycycle/internal/api"
	"github.com/flexprice/paycycle/internal/api/cron"
	v1 "github.com/flexprice/paycycle/internal/api/v1"
	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	"github.com/flexprice/paycycle/internal/processor"
	"github.com/flexprice/paycycle/internal/publisher"
	"github.com/flexprice/paycycle/internal/pyroscope"
	"github.com/flexprice/paycycle/internal/repository"
	"github.com/flexprice/paycycle/internal/sentry"
	"github.com/flexprice/paycycle/internal/service"
	"github.com/flexprice/paycycle/internal/temporal"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/flexprice/paycycle/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Paycycle API
// @version 1.0
// @description Membership billing, payment retries and billing cycle aging
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,
			pyroscope.NewPyroscopeService,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,
			postgres.NewSentryClient,

			// Event Publisher
			publisher.NewEventPublisher,

			// Payment processors
			provideProcessors,

			// Repositories
			repository.NewPaymentRepository,
			repository.NewPaymentMethodRepository,
			repository.NewSubscriptionRepository,
			repository.NewBillingCycleRepository,
			repository.NewAccountRepository,

			// Temporal
			provideTemporalClient,
			provideTemporalService,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewPaymentProcessorService,
			service.NewSubscriptionService,
			service.NewBillingCycleAgingService,
		),
	)

	// API and Temporal
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			pyroscope.RegisterHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideProcessors(cfg *config.Configuration, log *logger.Logger) *processor.Registry {
	if cfg.Deployment.Mode != types.ModeLocal {
		log.Warnw("no live processor integrations configured, using simulated processors",
			"mode", cfg.Deployment.Mode,
		)
	}
	return processor.NewSimulatedRegistry()
}

func provideHandlers(
	db *postgres.DB,
	logger *logger.Logger,
	subscriptionService service.SubscriptionService,
	agingService service.BillingCycleAgingService,
	paymentProcessorService service.PaymentProcessorService,
	temporalService *temporal.Service,
) api.Handlers {
	return api.Handlers{
		Health:           v1.NewHealthHandler(db, logger),
		Membership:       v1.NewMembershipHandler(subscriptionService, logger),
		CronBillingCycle: cron.NewBillingCycleHandler(agingService, temporalService, logger),
		CronPayment:      cron.NewPaymentHandler(paymentProcessorService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, profiler *pyroscope.Service) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, profiler)
}

// provideTemporalClient returns nil when no Temporal frontend is configured,
// the HTTP cron endpoints then run the sweep inline.
func provideTemporalClient(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*temporal.TemporalClient, error) {
	if cfg.Temporal.Address == "" {
		log.Infow("temporal address not configured, workflows disabled")
		return nil, nil
	}

	c, err := temporal.NewTemporalClient(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			c.Close()
			return nil
		},
	})
	return c, nil
}

func provideTemporalService(temporalClient *temporal.TemporalClient, cfg *config.Configuration, log *logger.Logger) *temporal.Service {
	if temporalClient == nil {
		return nil
	}
	return temporal.NewService(temporalClient, cfg, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	params service.ServiceParams,
	temporalClient *temporal.TemporalClient,
	temporalService *temporal.Service,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startTemporalWorker(lc, temporalClient, temporalService, cfg, params, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeTemporalWorker:
		if temporalClient == nil {
			log.Fatal("Temporal address required for temporal_worker mode")
		}
		startTemporalWorker(lc, temporalClient, temporalService, cfg, params, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startTemporalWorker(
	lc fx.Lifecycle,
	temporalClient *temporal.TemporalClient,
	temporalService *temporal.Service,
	cfg *config.Configuration,
	params service.ServiceParams,
	log *logger.Logger,
) {
	if temporalClient == nil {
		log.Info("Skipping temporal worker, no client configured")
		return
	}

	worker := temporal.NewWorker(temporalClient, cfg, params)
	worker.RegisterWithLifecycle(lc)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return temporalService.StartBillingCycleAgingCron(ctx)
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
