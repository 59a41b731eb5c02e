package postgres

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	"github.com/flexprice/paycycle/internal/types"
)

type paymentMethodRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentMethodRepository(db *postgres.DB, logger *logger.Logger) paymentmethod.Repository {
	return &paymentMethodRepository{db: db, logger: logger}
}

func (r *paymentMethodRepository) Create(ctx context.Context, pm *paymentmethod.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (
			id, customer_id, type, status, funding_type, card_brand, card_last4, exp_month,
			exp_year, issuer, is_default, deleted, deleted_at, deleted_by, memo,
			created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :customer_id, :type, :status, :funding_type, :card_brand, :card_last4, :exp_month,
			:exp_year, :issuer, :is_default, :deleted, :deleted_at, :deleted_by, :memo,
			:created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating payment method",
		"payment_method_id", pm.ID,
		"customer_id", pm.CustomerID,
		"type", pm.Type,
	)

	if _, err := r.db.NamedExecContext(ctx, query, pm); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment method").
			Mark(markOrDatabase(err))
	}
	return nil
}

func (r *paymentMethodRepository) Get(ctx context.Context, id string) (*paymentmethod.PaymentMethod, error) {
	var pm paymentmethod.PaymentMethod
	if err := r.db.GetContext(ctx, &pm, `SELECT * FROM payment_methods WHERE id = $1`, id); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Payment method %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment method").
			Mark(ierr.ErrDatabase)
	}
	return &pm, nil
}

func (r *paymentMethodRepository) Update(ctx context.Context, pm *paymentmethod.PaymentMethod) error {
	query := `
		UPDATE payment_methods SET
			status = :status,
			funding_type = :funding_type,
			card_brand = :card_brand,
			card_last4 = :card_last4,
			exp_month = :exp_month,
			exp_year = :exp_year,
			issuer = :issuer,
			is_default = :is_default,
			memo = :memo,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND deleted = FALSE`

	result, err := r.db.NamedExecContext(ctx, query, pm)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment method").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "payment method", pm.ID)
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE payment_methods SET
			deleted = TRUE,
			is_default = FALSE,
			deleted_at = $2,
			deleted_by = $3,
			updated_at = $2,
			updated_by = $3
		WHERE id = $1 AND deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC(), types.GetUserID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete payment method").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "payment method", id)
}

func (r *paymentMethodRepository) ListByCustomerID(ctx context.Context, customerID string) ([]*paymentmethod.PaymentMethod, error) {
	var methods []*paymentmethod.PaymentMethod
	query := `SELECT * FROM payment_methods WHERE customer_id = $1 AND deleted = FALSE ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &methods, query, customerID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payment methods").
			Mark(ierr.ErrDatabase)
	}
	return methods, nil
}

func (r *paymentMethodRepository) CreateProcessor(ctx context.Context, p *paymentmethod.PaymentMethodProcessor) error {
	query := `
		INSERT INTO payment_method_processors (
			id, payment_method_id, provider_name, processor_external_id, provider_account_id,
			is_recurring, processor_external_data, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :payment_method_id, :provider_name, :processor_external_id, :provider_account_id,
			:is_recurring, :processor_external_data, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to register payment method with processor").
			Mark(markOrDatabase(err))
	}
	return nil
}

func (r *paymentMethodRepository) ListProcessors(ctx context.Context, paymentMethodID string) ([]*paymentmethod.PaymentMethodProcessor, error) {
	var processors []*paymentmethod.PaymentMethodProcessor
	query := `SELECT * FROM payment_method_processors WHERE payment_method_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &processors, query, paymentMethodID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payment method processors").
			Mark(ierr.ErrDatabase)
	}
	return processors, nil
}

func (r *paymentMethodRepository) DeleteProcessor(ctx context.Context, id string) error {
	query := `
		UPDATE payment_method_processors SET
			processor_external_id = $2,
			updated_at = $3,
			updated_by = $4
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, types.ProcessorExternalIDDeleted, time.Now().UTC(), types.GetUserID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete payment method processor").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "payment method processor", id)
}
