package payment

import (
	"time"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is a single attempt to move a fixed amount for a customer account.
// Retries never mutate a failed payment; each retry is a new Payment linked to
// the one it retries through RetryPrevPaymentID.
type Payment struct {
	// Unique identifier for this payment
	ID string `db:"id" json:"id"`
	// The account_id is the customer account this payment settles
	AccountID string `db:"account_id" json:"account_id"`
	// The customer_id owns the payment methods this payment may be routed to
	CustomerID string `db:"customer_id" json:"customer_id"`
	// The subscription_id links the payment to a membership (optional)
	SubscriptionID *string `db:"subscription_id" json:"subscription_id,omitempty"`
	// The billing_cycle_id is the cycle this payment settles (optional)
	BillingCycleID *string `db:"billing_cycle_id" json:"billing_cycle_id,omitempty"`
	// The amount field specifies the payment value in the given currency
	Amount decimal.Decimal `db:"amount" json:"amount"`
	// The currency field uses a three-letter ISO code
	Currency string `db:"currency" json:"currency"`
	// The type describes why the money is being moved
	Type types.PaymentType `db:"type" json:"type"`
	// The direction is pull (charge) or push (payout)
	Direction types.PaymentDirection `db:"direction" json:"direction"`
	// The status is the lifecycle state of this attempt
	Status types.PaymentStatus `db:"status" json:"status"`
	// The code is the last processing outcome, nil until attempted
	Code *types.PaymentStatusCode `db:"code" json:"code,omitempty"`
	// The track restricts which class of payment method may carry the attempt
	Track types.PaymentTrack `db:"track" json:"track"`
	// The date is when the payment is due or was attempted
	Date time.Time `db:"date" json:"date"`
	// The payment_method_id is attached lazily by routing
	PaymentMethodID *string `db:"payment_method_id" json:"payment_method_id,omitempty"`
	// The payment_method_processor_id is the processor registration selected by routing
	PaymentMethodProcessorID *string `db:"payment_method_processor_id" json:"payment_method_processor_id,omitempty"`
	// The processor_transaction_id is the reference returned by the processor (optional)
	ProcessorTransactionID *string `db:"processor_transaction_id" json:"processor_transaction_id,omitempty"`
	// The retry_sequence_nb counts prior retries in this chain
	RetrySequenceNb int `db:"retry_sequence_nb" json:"retry_sequence_nb"`
	// The retry_prev_payment_id points at the payment this one retries
	RetryPrevPaymentID *string `db:"retry_prev_payment_id" json:"retry_prev_payment_id,omitempty"`
	// The retry_routing_ctx holds processor exclusions accumulated across the chain
	RetryRoutingCtx types.RoutingContext `db:"retry_routing_ctx" json:"retry_routing_ctx"`
	// The retry_annotation records the action and bucket that produced this retry
	RetryAnnotation *string `db:"retry_annotation" json:"retry_annotation,omitempty"`
	// The retry_logic_version is the version of the rules that scheduled this retry
	RetryLogicVersion *int `db:"retry_logic_version" json:"retry_logic_version,omitempty"`
	// The retry_trace_data captures the originating code, bucket and retry count
	RetryTraceData *types.RetryTraceData `db:"retry_trace_data" json:"retry_trace_data,omitempty"`
	// The memo is a free-form audit note
	Memo *string `db:"memo" json:"memo,omitempty"`
	// The processed_at timestamp is when the last attempt completed (optional)
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`

	types.BaseModel
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if p.Amount.IsZero() || p.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if p.AccountID == "" {
		return ierr.NewError("invalid account id").
			WithHint("Account id is required").
			Mark(ierr.ErrValidation)
	}
	if p.CustomerID == "" {
		return ierr.NewError("invalid customer id").
			WithHint("Customer id is required").
			Mark(ierr.ErrValidation)
	}
	if p.Currency == "" {
		return ierr.NewError("invalid currency").
			WithHint("Currency is invalid").
			Mark(ierr.ErrValidation)
	}
	if err := p.Status.Validate(); err != nil {
		return err
	}
	if err := p.Track.Validate(); err != nil {
		return err
	}
	if p.RetrySequenceNb < 0 {
		return ierr.NewError("invalid retry sequence").
			WithHint("Retry sequence must not be negative").
			Mark(ierr.ErrValidation)
	}
	if p.RetrySequenceNb > 0 && p.RetryPrevPaymentID == nil {
		return ierr.NewError("retry payment missing previous payment").
			WithHint("A retry must reference the payment it retries").
			WithReportableDetails(map[string]any{
				"payment_id":        p.ID,
				"retry_sequence_nb": p.RetrySequenceNb,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsPaid reports whether the payment has settled
func (p *Payment) IsPaid() bool {
	return p.Status == types.PaymentStatusPaid
}

// StatusCode returns the last outcome, or zero if never attempted
func (p *Payment) StatusCode() types.PaymentStatusCode {
	if p.Code == nil {
		return 0
	}
	return *p.Code
}

// SetOutcome records a processing outcome and the status it implies
func (p *Payment) SetOutcome(code types.PaymentStatusCode, at time.Time) {
	p.Code = &code
	p.ProcessedAt = &at
	switch {
	case code.IsSuccess():
		p.Status = types.PaymentStatusPaid
	case code.IsProcessing():
		p.Status = types.PaymentStatusPending
	default:
		p.Status = types.PaymentStatusFailed
	}
}

// TableName returns the table name for the payment
func (p *Payment) TableName() string {
	return "payments"
}
