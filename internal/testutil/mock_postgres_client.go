package testutil

import (
	"context"
	"sync/atomic"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

type mockTxKey struct{}

// MockPostgresClient runs transaction bodies directly. RetriableTx replays
// the body on serialization conflicts like the real client, without delay.
type MockPostgresClient struct {
	logger      *logger.Logger
	maxAttempts int
	attempts    atomic.Int64
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{
		logger:      logger,
		maxAttempts: 5,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	c.attempts.Add(1)
	return fn(context.WithValue(ctx, mockTxKey{}, true))
}

// RetriableTx executes fn, replaying it while it fails with a serialization conflict
func (c *MockPostgresClient) RetriableTx(ctx context.Context, fn func(context.Context) error) error {
	if inTx, _ := ctx.Value(mockTxKey{}).(bool); inTx {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.attempts.Add(1)
		err = fn(context.WithValue(ctx, mockTxKey{}, true))
		if err == nil || !ierr.IsSerializationConflict(err) {
			return err
		}
		c.logger.Debugw("replaying transaction after conflict", "attempt", attempt)
	}
	return err
}

// Attempts returns how many transaction bodies were run
func (c *MockPostgresClient) Attempts() int {
	return int(c.attempts.Load())
}
