package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/paycycle/internal/config"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"go.uber.org/fx"
)

// IClient is the transaction boundary the services depend on
type IClient interface {
	// WithTx wraps the given function in a read committed transaction
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// RetriableTx runs fn in a serializable transaction and retries the whole
	// transaction, within the configured budget, when it loses a serialization
	// race. Any other error fails immediately.
	RetriableTx(ctx context.Context, fn func(context.Context) error) error
}

// Client implements IClient on top of DB
type Client struct {
	db     *DB
	cfg    config.TransactionConfig
	logger *logger.Logger
}

// Module provides an fx.Option wiring the connection pool and client
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
		),
	)
}

// NewClient creates a new transaction client
func NewClient(db *DB, cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		db:     db,
		cfg:    cfg.Transaction,
		logger: logger,
	}
}

func (c *Client) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return c.db.WithTx(ctx, fn)
}

func (c *Client) RetriableTx(ctx context.Context, fn func(context.Context) error) error {
	// An outer transaction can not be replayed from here, run inside its savepoint instead
	if _, ok := GetTx(ctx); ok {
		return c.db.withTx(ctx, sql.LevelSerializable, fn)
	}

	return retryOnConflict(ctx, c.cfg, c.logger, func() error {
		return c.db.withTx(ctx, sql.LevelSerializable, fn)
	})
}

// retryOnConflict replays run while it fails with a serialization conflict,
// for at most cfg.MaxAttempts attempts spaced by cfg.RetryDelay
func retryOnConflict(ctx context.Context, cfg config.TransactionConfig, log *logger.Logger, run func() error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := run()
		if err == nil {
			return nil
		}
		if ierr.IsSerializationConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		log.Warnw("retrying serializable transaction",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)
	}

	err := backoff.RetryNotify(op, newTxBackoff(ctx, cfg), notify)
	if err != nil && ierr.IsSerializationConflict(err) {
		return ierr.WithError(err).
			WithHint("The operation conflicted with a concurrent update, please retry").
			WithReportableDetails(map[string]any{
				"attempts": attempt,
			}).
			Mark(ierr.ErrSerializationConflict)
	}
	return err
}

func newTxBackoff(ctx context.Context, cfg config.TransactionConfig) backoff.BackOff {
	maxRetries := cfg.MaxAttempts - 1
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.RetryDelay), uint64(maxRetries)),
		ctx,
	)
}
