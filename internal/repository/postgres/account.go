package postgres

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/account"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	"github.com/flexprice/paycycle/internal/types"
)

type accountRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return &accountRepository{db: db, logger: logger}
}

func (r *accountRepository) Create(ctx context.Context, acct *account.CustomerAccount) error {
	query := `
		INSERT INTO customer_accounts (
			id, customer_id, type, status, rating, balance, balance_due_date, first_delinquent_date,
			last_successful_payment_amount, last_successful_payment_date, last_failed_payment_amount,
			last_failed_payment_date, nsf_count, card_block_count, last_marking_date, opened_on,
			closed_on, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :customer_id, :type, :status, :rating, :balance, :balance_due_date, :first_delinquent_date,
			:last_successful_payment_amount, :last_successful_payment_date, :last_failed_payment_amount,
			:last_failed_payment_date, :nsf_count, :card_block_count, :last_marking_date, :opened_on,
			:closed_on, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, acct); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create customer account").
			Mark(markOrDatabase(err))
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (*account.CustomerAccount, error) {
	var acct account.CustomerAccount
	if err := r.db.GetContext(ctx, &acct, `SELECT * FROM customer_accounts WHERE id = $1`, id); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Customer account %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer account").
			Mark(ierr.ErrDatabase)
	}
	return &acct, nil
}

func (r *accountRepository) Update(ctx context.Context, acct *account.CustomerAccount) error {
	query := `
		UPDATE customer_accounts SET
			status = :status,
			rating = :rating,
			balance = :balance,
			balance_due_date = :balance_due_date,
			first_delinquent_date = :first_delinquent_date,
			last_successful_payment_amount = :last_successful_payment_amount,
			last_successful_payment_date = :last_successful_payment_date,
			last_failed_payment_amount = :last_failed_payment_amount,
			last_failed_payment_date = :last_failed_payment_date,
			nsf_count = :nsf_count,
			card_block_count = :card_block_count,
			last_marking_date = :last_marking_date,
			closed_on = :closed_on,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, acct)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update customer account").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "customer account", acct.ID)
}

func (r *accountRepository) UpdateRating(ctx context.Context, id string, rating types.BillingAccountRating) error {
	query := `
		UPDATE customer_accounts SET
			rating = $2,
			last_marking_date = $3,
			updated_at = $3,
			updated_by = $4
		WHERE id = $1`

	r.logger.Debugw("updating account rating",
		"account_id", id,
		"rating", rating,
	)

	result, err := r.db.ExecContext(ctx, query, id, rating, time.Now().UTC(), types.GetUserID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update account rating").
			Mark(markOrDatabase(err))
	}
	return requireAffected(result, "customer account", id)
}
