package billingcycle

import (
	"time"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/shopspring/decimal"
)

// BillingCycle is the [StartDate, EndDate) window a subscription is billed for
type BillingCycle struct {
	ID             string                   `db:"id" json:"id"`
	SubscriptionID string                   `db:"subscription_id" json:"subscription_id"`
	StartDate      time.Time                `db:"start_date" json:"start_date"`
	EndDate        time.Time                `db:"end_date" json:"end_date"`
	Status         types.BillingCycleStatus `db:"status" json:"status"`
	DaysOverdue    *int                     `db:"days_overdue" json:"days_overdue,omitempty"`
	PaymentDate    *time.Time               `db:"payment_date" json:"payment_date,omitempty"`
	PaymentAmount  decimal.Decimal          `db:"payment_amount" json:"payment_amount"`
	Memo           *string                  `db:"memo" json:"memo,omitempty"`
	Deleted        bool                     `db:"deleted" json:"deleted"`
	DeletedAt      *time.Time               `db:"deleted_at" json:"deleted_at,omitempty"`

	types.BaseModel
}

// HasEnded reports whether the window closed at or before now
func (bc *BillingCycle) HasEnded(now time.Time) bool {
	return !bc.EndDate.After(now)
}

func (bc *BillingCycle) Validate() error {
	if bc.SubscriptionID == "" {
		return ierr.NewError("invalid subscription id").
			WithHint("Subscription id is required").
			Mark(ierr.ErrValidation)
	}
	if !bc.EndDate.After(bc.StartDate) {
		return ierr.NewError("invalid billing window").
			WithHint("End date must be after start date").
			WithReportableDetails(map[string]any{
				"start_date": bc.StartDate,
				"end_date":   bc.EndDate,
			}).
			Mark(ierr.ErrValidation)
	}
	return bc.Status.Validate()
}
