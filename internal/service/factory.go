package service

import (
	"context"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	"github.com/flexprice/paycycle/internal/processor"
	"github.com/flexprice/paycycle/internal/publisher"
	"github.com/flexprice/paycycle/internal/pyroscope"
	"github.com/flexprice/paycycle/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	PaymentRepo       payment.Repository
	PaymentMethodRepo paymentmethod.Repository
	SubRepo           subscription.Repository
	BillingCycleRepo  billingcycle.Repository
	AccountRepo       account.Repository

	// Publishers
	EventPublisher publisher.EventPublisher

	// Processors routes charges to the provider selected by routing
	Processors *processor.Registry

	Sentry    *sentry.Service
	Pyroscope *pyroscope.Service
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	paymentRepo payment.Repository,
	paymentMethodRepo paymentmethod.Repository,
	subRepo subscription.Repository,
	billingCycleRepo billingcycle.Repository,
	accountRepo account.Repository,
	eventPublisher publisher.EventPublisher,
	processors *processor.Registry,
	sentry *sentry.Service,
	pyroscope *pyroscope.Service,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		PaymentRepo:       paymentRepo,
		PaymentMethodRepo: paymentMethodRepo,
		SubRepo:           subRepo,
		BillingCycleRepo:  billingCycleRepo,
		AccountRepo:       accountRepo,
		EventPublisher:    eventPublisher,
		Processors:        processors,
		Sentry:            sentry,
		Pyroscope:         pyroscope,
	}
}

// startTransaction opens a Sentry transaction around a background run. The
// returned func finishes it and is safe to call when Sentry is off.
func (p ServiceParams) startTransaction(ctx context.Context, name string) (context.Context, func()) {
	if p.Sentry == nil {
		return ctx, func() {}
	}
	span, spanCtx := p.Sentry.StartTransaction(ctx, name)
	if span == nil {
		return ctx, func() {}
	}
	return spanCtx, span.Finish
}
