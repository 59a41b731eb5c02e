package payment

import (
	"testing"
	"time"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validPayment() *Payment {
	return &Payment{
		ID:         "pay_1",
		AccountID:  "acct_1",
		CustomerID: "cus_1",
		Amount:     decimal.RequireFromString("11.99"),
		Currency:   "usd",
		Status:     types.PaymentStatusScheduled,
		Track:      types.PaymentTrackBankCard,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validPayment().Validate())

	p := validPayment()
	p.Amount = decimal.Zero
	assert.True(t, ierr.IsValidation(p.Validate()))

	p = validPayment()
	p.Track = "WIRE"
	assert.True(t, ierr.IsValidation(p.Validate()))

	p = validPayment()
	p.RetrySequenceNb = 2
	assert.True(t, ierr.IsValidation(p.Validate()))

	p.RetryPrevPaymentID = lo.ToPtr("pay_0")
	assert.NoError(t, p.Validate())
}

func TestSetOutcome(t *testing.T) {
	at := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		code types.PaymentStatusCode
		want types.PaymentStatus
	}{
		{types.PaymentStatusCodeSuccess, types.PaymentStatusPaid},
		{types.PaymentStatusCodeSentToProcessor, types.PaymentStatusPending},
		{types.PaymentStatusCodeNSF, types.PaymentStatusFailed},
		{types.PaymentStatusCodeNoValidBankCard, types.PaymentStatusFailed},
	}

	for _, tt := range tests {
		p := validPayment()
		p.SetOutcome(tt.code, at)
		assert.Equal(t, tt.want, p.Status, tt.code.String())
		assert.Equal(t, tt.code, p.StatusCode())
		assert.True(t, p.ProcessedAt.Equal(at))
	}

	assert.Equal(t, types.PaymentStatusCode(0), validPayment().StatusCode())
}
