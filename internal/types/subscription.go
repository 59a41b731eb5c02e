package types

import (
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the membership lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrial                 SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive                SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPaymentFailed         SubscriptionStatus = "PAYMENT_FAILED"
	SubscriptionStatusOverdue               SubscriptionStatus = "OVERDUE"
	SubscriptionStatusScheduledCancellation SubscriptionStatus = "SCHEDULED_CANCELLATION"
	SubscriptionStatusCancelled             SubscriptionStatus = "CANCELLED"
	SubscriptionStatusDeactivated           SubscriptionStatus = "DEACTIVATED"
	SubscriptionStatusWrittenOff            SubscriptionStatus = "WRITTEN_OFF"
)

// AgeableSubscriptionStatuses are the statuses the aging sweep picks up
var AgeableSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusTrial,
	SubscriptionStatusActive,
	SubscriptionStatusPaymentFailed,
	SubscriptionStatusOverdue,
	SubscriptionStatusScheduledCancellation,
}

// CancellableSubscriptionStatuses are the statuses a member may cancel from
var CancellableSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusTrial,
	SubscriptionStatusActive,
	SubscriptionStatusPaymentFailed,
	SubscriptionStatusOverdue,
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusTrial,
		SubscriptionStatusActive,
		SubscriptionStatusPaymentFailed,
		SubscriptionStatusOverdue,
		SubscriptionStatusScheduledCancellation,
		SubscriptionStatusCancelled,
		SubscriptionStatusDeactivated,
		SubscriptionStatusWrittenOff,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionType is the product a subscription is for
type SubscriptionType string

const (
	SubscriptionTypeMembership SubscriptionType = "MEMBERSHIP"
)

// SubscriptionProcessingStatus is the mutual-exclusion marker held while a
// subscription is being mutated
type SubscriptionProcessingStatus string

const (
	SubscriptionProcessingStatusNone       SubscriptionProcessingStatus = "NONE"
	SubscriptionProcessingStatusProcessing SubscriptionProcessingStatus = "PROCESSING"
)

// BillingCycleStatus is the payment state of a billing window
type BillingCycleStatus string

const (
	BillingCycleStatusNew        BillingCycleStatus = "NEW"
	BillingCycleStatusUnpaid     BillingCycleStatus = "UNPAID"
	BillingCycleStatusTrial      BillingCycleStatus = "TRIAL"
	BillingCycleStatusPaid       BillingCycleStatus = "PAID"
	BillingCycleStatusFreeCredit BillingCycleStatus = "FREE_CREDIT"
	BillingCycleStatusCancelled  BillingCycleStatus = "CANCELLED"
	BillingCycleStatusWrittenOff BillingCycleStatus = "WRITTEN_OFF"
)

// IsPaid reports whether nothing is owed for the cycle
func (s BillingCycleStatus) IsPaid() bool {
	return s == BillingCycleStatusPaid ||
		s == BillingCycleStatusTrial ||
		s == BillingCycleStatusFreeCredit
}

func (s BillingCycleStatus) Validate() error {
	allowed := []BillingCycleStatus{
		BillingCycleStatusNew,
		BillingCycleStatusUnpaid,
		BillingCycleStatusTrial,
		BillingCycleStatusPaid,
		BillingCycleStatusFreeCredit,
		BillingCycleStatusCancelled,
		BillingCycleStatusWrittenOff,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid billing cycle status").
			WithHint("Invalid billing cycle status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
