package postgres

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	"github.com/flexprice/paycycle/internal/types"
)

type billingCycleRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBillingCycleRepository(db *postgres.DB, logger *logger.Logger) billingcycle.Repository {
	return &billingCycleRepository{db: db, logger: logger}
}

func (r *billingCycleRepository) Create(ctx context.Context, bc *billingcycle.BillingCycle) error {
	query := `
		INSERT INTO billing_cycles (
			id, subscription_id, start_date, end_date, status, days_overdue, payment_date,
			payment_amount, memo, deleted, deleted_at, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :subscription_id, :start_date, :end_date, :status, :days_overdue, :payment_date,
			:payment_amount, :memo, :deleted, :deleted_at, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating billing cycle",
		"billing_cycle_id", bc.ID,
		"subscription_id", bc.SubscriptionID,
		"end_date", bc.EndDate,
	)

	if _, err := r.db.NamedExecContext(ctx, query, bc); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create billing cycle").
			Mark(markOrDatabase(err))
	}
	return nil
}

func (r *billingCycleRepository) Get(ctx context.Context, id string) (*billingcycle.BillingCycle, error) {
	var bc billingcycle.BillingCycle
	query := `SELECT * FROM billing_cycles WHERE id = $1 AND deleted = FALSE`
	if err := r.db.GetContext(ctx, &bc, query, id); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Billing cycle %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing cycle").
			Mark(ierr.ErrDatabase)
	}
	return &bc, nil
}

func (r *billingCycleRepository) Update(ctx context.Context, bc *billingcycle.BillingCycle) error {
	query := `
		UPDATE billing_cycles SET
			status = :status,
			days_overdue = :days_overdue,
			payment_date = :payment_date,
			payment_amount = :payment_amount,
			memo = :memo,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND deleted = FALSE`

	result, err := r.db.NamedExecContext(ctx, query, bc)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update billing cycle").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "billing cycle", bc.ID)
}

func (r *billingCycleRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE billing_cycles SET
			deleted = TRUE,
			deleted_at = $2,
			updated_at = $2,
			updated_by = $3
		WHERE id = $1 AND deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC(), types.GetUserID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete billing cycle").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "billing cycle", id)
}

func (r *billingCycleRepository) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*billingcycle.BillingCycle, error) {
	var cycles []*billingcycle.BillingCycle
	query := `SELECT * FROM billing_cycles WHERE subscription_id = $1 AND deleted = FALSE ORDER BY start_date`
	if err := r.db.SelectContext(ctx, &cycles, query, subscriptionID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list billing cycles").
			Mark(ierr.ErrDatabase)
	}
	return cycles, nil
}
