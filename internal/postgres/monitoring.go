package postgres

import (
	"context"

	"github.com/flexprice/paycycle/internal/logger"
	sentryService "github.com/flexprice/paycycle/internal/sentry"
)

// SentryClient wraps an IClient with Sentry span tracking
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

// NewSentryClient creates a new Sentry-instrumented Postgres client
func NewSentryClient(client *Client, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"operation": "transaction",
	})
	if span != nil {
		defer span.Finish()
	}
	return c.client.WithTx(spanCtx, fn)
}

func (c *SentryClient) RetriableTx(ctx context.Context, fn func(context.Context) error) error {
	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.retriable_transaction", map[string]interface{}{
		"operation": "retriable_transaction",
		"isolation": "serializable",
	})
	if span != nil {
		defer span.Finish()
	}
	return c.client.RetriableTx(spanCtx, fn)
}
