package types

import (
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/samber/lo"
)

// PaymentStatus is the lifecycle state of a single payment attempt
type PaymentStatus string

const (
	PaymentStatusScheduled PaymentStatus = "SCHEDULED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusScheduled,
		PaymentStatusPending,
		PaymentStatusPaid,
		PaymentStatusFailed,
		PaymentStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Invalid payment status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentTrack is the class of payment method an attempt may be routed to
type PaymentTrack string

const (
	PaymentTrackBankCard PaymentTrack = "BANK_CARD"
	PaymentTrackAnyCard  PaymentTrack = "ANY_CARD"
	PaymentTrackBankEFT  PaymentTrack = "BANK_EFT"
)

func (t PaymentTrack) String() string {
	return string(t)
}

func (t PaymentTrack) Validate() error {
	allowed := []PaymentTrack{
		PaymentTrackBankCard,
		PaymentTrackAnyCard,
		PaymentTrackBankEFT,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid payment track").
			WithHint("Invalid payment track").
			WithReportableDetails(map[string]any{
				"track":         t,
				"allowed_track": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentType describes why the money is being moved
type PaymentType string

const (
	PaymentTypeSubscription PaymentType = "SUBSCRIPTION"
	PaymentTypeOneTime      PaymentType = "ONE_TIME"
)

func (t PaymentType) Validate() error {
	allowed := []PaymentType{PaymentTypeSubscription, PaymentTypeOneTime}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid payment type").
			WithHint("Invalid payment type").
			WithReportableDetails(map[string]any{
				"type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentDirection is the direction funds flow relative to the customer
type PaymentDirection string

const (
	PaymentDirectionPull PaymentDirection = "PULL"
	PaymentDirectionPush PaymentDirection = "PUSH"
)

func (d PaymentDirection) Validate() error {
	allowed := []PaymentDirection{PaymentDirectionPull, PaymentDirectionPush}
	if !lo.Contains(allowed, d) {
		return ierr.NewError("invalid payment direction").
			WithHint("Invalid payment direction").
			WithReportableDetails(map[string]any{
				"direction": d,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
