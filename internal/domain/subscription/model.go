package subscription

import (
	"time"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Subscription is a customer's membership. ProcessingStatus is the lock held
// while the aging sweep or a member action mutates it.
type Subscription struct {
	ID                    string                             `db:"id" json:"id"`
	CustomerID            string                             `db:"customer_id" json:"customer_id"`
	AccountID             string                             `db:"account_id" json:"account_id"`
	Type                  types.SubscriptionType             `db:"type" json:"type"`
	Status                types.SubscriptionStatus           `db:"status" json:"status"`
	ProcessingStatus      types.SubscriptionProcessingStatus `db:"processing_status" json:"processing_status"`
	StartDate             time.Time                          `db:"start_date" json:"start_date"`
	InactiveAfter         *time.Time                         `db:"inactive_after" json:"inactive_after,omitempty"`
	CurrentBillingCycleID *string                            `db:"current_billing_cycle_id" json:"current_billing_cycle_id,omitempty"`
	Amount                decimal.Decimal                    `db:"amount" json:"amount"`
	Currency              string                             `db:"currency" json:"currency"`
	PaymentFailureCnt     int                                `db:"payment_failure_cnt" json:"payment_failure_cnt"`
	LastMarkingStart      *time.Time                         `db:"last_marking_start" json:"last_marking_start,omitempty"`
	LastMarkingEnd        *time.Time                         `db:"last_marking_end" json:"last_marking_end,omitempty"`

	types.BaseModel
}

// IsLocked reports whether another run currently holds the subscription
func (s *Subscription) IsLocked() bool {
	return s.ProcessingStatus == types.SubscriptionProcessingStatusProcessing
}

// IsAgeable reports whether the aging sweep handles the subscription's status
func (s *Subscription) IsAgeable() bool {
	return lo.Contains(types.AgeableSubscriptionStatuses, s.Status)
}

func (s *Subscription) Validate() error {
	if s.CustomerID == "" || s.AccountID == "" {
		return ierr.NewError("subscription missing owner").
			WithHint("Customer and account are required").
			Mark(ierr.ErrValidation)
	}
	if s.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must not be negative").
			Mark(ierr.ErrValidation)
	}
	return s.Status.Validate()
}

// AgingFilter selects subscriptions due for an aging pass
type AgingFilter struct {
	Statuses []types.SubscriptionStatus
	// CycleEndBefore is the look-ahead horizon for the current cycle's end date
	CycleEndBefore time.Time
	Limit          int
}
