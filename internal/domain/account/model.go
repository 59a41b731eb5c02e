package account

import (
	"time"

	"github.com/flexprice/paycycle/internal/types"
	"github.com/shopspring/decimal"
)

// CustomerAccount is the aggregate billing state of a customer
type CustomerAccount struct {
	ID                          string                     `db:"id" json:"id"`
	CustomerID                  string                     `db:"customer_id" json:"customer_id"`
	Type                        types.CustomerAccountType  `db:"type" json:"type"`
	Status                      types.BillingAccountStatus `db:"status" json:"status"`
	Rating                      types.BillingAccountRating `db:"rating" json:"rating"`
	Balance                     decimal.Decimal            `db:"balance" json:"balance"`
	BalanceDueDate              *time.Time                 `db:"balance_due_date" json:"balance_due_date,omitempty"`
	FirstDelinquentDate         *time.Time                 `db:"first_delinquent_date" json:"first_delinquent_date,omitempty"`
	LastSuccessfulPaymentAmount *decimal.Decimal           `db:"last_successful_payment_amount" json:"last_successful_payment_amount,omitempty"`
	LastSuccessfulPaymentDate   *time.Time                 `db:"last_successful_payment_date" json:"last_successful_payment_date,omitempty"`
	LastFailedPaymentAmount     *decimal.Decimal           `db:"last_failed_payment_amount" json:"last_failed_payment_amount,omitempty"`
	LastFailedPaymentDate       *time.Time                 `db:"last_failed_payment_date" json:"last_failed_payment_date,omitempty"`
	NSFCount                    int                        `db:"nsf_count" json:"nsf_count"`
	CardBlockCount              int                        `db:"card_block_count" json:"card_block_count"`
	LastMarkingDate             *time.Time                 `db:"last_marking_date" json:"last_marking_date,omitempty"`
	OpenedOn                    *time.Time                 `db:"opened_on" json:"opened_on,omitempty"`
	ClosedOn                    *time.Time                 `db:"closed_on" json:"closed_on,omitempty"`

	types.BaseModel
}

// RecordSuccess updates the last successful payment stats and pays down the balance
func (a *CustomerAccount) RecordSuccess(amount decimal.Decimal, at time.Time) {
	a.LastSuccessfulPaymentAmount = &amount
	a.LastSuccessfulPaymentDate = &at
	a.Balance = a.Balance.Sub(amount)
	if a.Balance.IsNegative() {
		a.Balance = decimal.Zero
	}
	if a.Balance.IsZero() {
		a.FirstDelinquentDate = nil
	}
}

// RecordFailure updates the last failed payment stats and failure counters
func (a *CustomerAccount) RecordFailure(amount decimal.Decimal, code types.PaymentStatusCode, at time.Time) {
	a.LastFailedPaymentAmount = &amount
	a.LastFailedPaymentDate = &at
	if a.FirstDelinquentDate == nil {
		a.FirstDelinquentDate = &at
	}
	switch code {
	case types.PaymentStatusCodeNSF, types.PaymentStatusCodeEFTNSF:
		a.NSFCount++
	case types.PaymentStatusCodeCardGatewayBlock, types.PaymentStatusCodeCardIssuerBlock:
		a.CardBlockCount++
	}
}
