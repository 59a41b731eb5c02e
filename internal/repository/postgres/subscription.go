package postgres

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/subscription"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, customer_id, account_id, type, status, processing_status, start_date,
			inactive_after, current_billing_cycle_id, amount, currency, payment_failure_cnt,
			last_marking_start, last_marking_end, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :customer_id, :account_id, :type, :status, :processing_status, :start_date,
			:inactive_after, :current_billing_cycle_id, :amount, :currency, :payment_failure_cnt,
			:last_marking_start, :last_marking_end, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(markOrDatabase(err))
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	if err := r.db.GetContext(ctx, &sub, `SELECT * FROM subscriptions WHERE id = $1`, id); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Subscription %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

// Update writes the mutable business columns. The lock columns are owned by
// AcquireLock and ReleaseLock.
func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			status = :status,
			start_date = :start_date,
			inactive_after = :inactive_after,
			current_billing_cycle_id = :current_billing_cycle_id,
			amount = :amount,
			payment_failure_cnt = :payment_failure_cnt,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	r.logger.Debugw("updating subscription",
		"subscription_id", sub.ID,
		"status", sub.Status,
	)

	result, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "subscription", sub.ID)
}

func (r *subscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	query := `SELECT * FROM subscriptions WHERE customer_id = $1 ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &sub, query, customerID); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("No subscription found for customer %s", customerID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListAgingCandidates(ctx context.Context, filter *subscription.AgingFilter) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	query := `
		SELECT s.* FROM subscriptions s
		JOIN billing_cycles bc ON bc.id = s.current_billing_cycle_id AND bc.deleted = FALSE
		WHERE s.processing_status = $1
			AND s.status = ANY($2)
			AND bc.end_date <= $3
		ORDER BY bc.end_date, s.id
		LIMIT NULLIF($4, 0)`

	statuses := lo.Map(filter.Statuses, func(s types.SubscriptionStatus, _ int) string {
		return string(s)
	})

	err := r.db.SelectContext(ctx, &subs, query,
		types.SubscriptionProcessingStatusNone,
		pq.Array(statuses),
		filter.CycleEndBefore,
		filter.Limit,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions due for aging").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriptionRepository) AcquireLock(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE subscriptions SET
			processing_status = $2,
			last_marking_start = $3,
			updated_at = $3
		WHERE id = $1 AND processing_status = $4`

	result, err := r.db.ExecContext(ctx, query,
		id,
		types.SubscriptionProcessingStatusProcessing,
		at,
		types.SubscriptionProcessingStatusNone,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to lock subscription").
			Mark(markOrDatabase(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if n == 0 {
		return ierr.NewErrorf("subscription %s is already being processed", id).
			WithHint("Subscription is locked by another run").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(ierr.ErrLockNotAcquired)
	}
	return nil
}

func (r *subscriptionRepository) ReleaseLock(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE subscriptions SET
			processing_status = $2,
			last_marking_end = $3,
			updated_at = $3
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, types.SubscriptionProcessingStatusNone, at); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to release subscription lock").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(markOrDatabase(err))
	}
	return nil
}

func (r *subscriptionRepository) ReleaseStaleLocks(ctx context.Context, olderThan time.Time, at time.Time) (int, error) {
	query := `
		UPDATE subscriptions SET
			processing_status = $1,
			last_marking_end = $2,
			updated_at = $2
		WHERE processing_status = $3
			AND (last_marking_start IS NULL OR last_marking_start < $4)`

	result, err := r.db.ExecContext(ctx, query,
		types.SubscriptionProcessingStatusNone,
		at,
		types.SubscriptionProcessingStatusProcessing,
		olderThan,
	)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to release stale subscription locks").
			Mark(markOrDatabase(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return int(n), nil
}
