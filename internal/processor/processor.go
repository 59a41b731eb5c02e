package processor

import (
	"context"

	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	"github.com/flexprice/paycycle/internal/types"
)

// ChargeRequest is everything a provider needs to pull funds for one attempt
type ChargeRequest struct {
	Payment       *payment.Payment
	PaymentMethod *paymentmethod.PaymentMethod
	Registration  *paymentmethod.PaymentMethodProcessor
	// IdempotencyKey is stable for the same payment through the same registration
	IdempotencyKey string
}

// ChargeResult is the normalized outcome of a provider call. TransactionID is
// only set when the provider accepted the charge.
type ChargeResult struct {
	Code          types.PaymentStatusCode
	TransactionID string
}

// Processor pulls funds through a single provider. Implementations report the
// outcome as a status code; an error means the call itself could not be made.
type Processor interface {
	Provider() types.PaymentProvider
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
}
