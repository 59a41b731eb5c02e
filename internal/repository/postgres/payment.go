package postgres

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/payment"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	"github.com/flexprice/paycycle/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, account_id, customer_id, subscription_id, billing_cycle_id, amount, currency,
			type, direction, status, code, track, date, payment_method_id,
			payment_method_processor_id, processor_transaction_id, retry_sequence_nb,
			retry_prev_payment_id, retry_routing_ctx, retry_annotation, retry_logic_version,
			retry_trace_data, memo, processed_at, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :account_id, :customer_id, :subscription_id, :billing_cycle_id, :amount, :currency,
			:type, :direction, :status, :code, :track, :date, :payment_method_id,
			:payment_method_processor_id, :processor_transaction_id, :retry_sequence_nb,
			:retry_prev_payment_id, :retry_routing_ctx, :retry_annotation, :retry_logic_version,
			:retry_trace_data, :memo, :processed_at, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating payment",
		"payment_id", p.ID,
		"account_id", p.AccountID,
		"retry_sequence_nb", p.RetrySequenceNb,
	)

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			WithReportableDetails(map[string]any{"payment_id": p.ID}).
			Mark(markOrDatabase(err))
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1`, id); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Payment %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			status = :status,
			code = :code,
			track = :track,
			date = :date,
			payment_method_id = :payment_method_id,
			payment_method_processor_id = :payment_method_processor_id,
			processor_transaction_id = :processor_transaction_id,
			retry_routing_ctx = :retry_routing_ctx,
			memo = :memo,
			processed_at = :processed_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	r.logger.Debugw("updating payment",
		"payment_id", p.ID,
		"status", p.Status,
	)

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "payment", p.ID)
}

func (r *paymentRepository) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := `SELECT * FROM payments WHERE subscription_id = $1 ORDER BY date, created_at`
	if err := r.db.SelectContext(ctx, &payments, query, subscriptionID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}

func (r *paymentRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := `
		SELECT * FROM payments
		WHERE status = $1 AND date <= $2
		ORDER BY date, created_at
		LIMIT NULLIF($3, 0)`
	if err := r.db.SelectContext(ctx, &payments, query, types.PaymentStatusScheduled, before, limit); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list due payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}
