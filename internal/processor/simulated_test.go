package processor

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chargeRequest(status types.PaymentMethodStatus) *ChargeRequest {
	return &ChargeRequest{
		Payment: &payment.Payment{ID: "pay_1"},
		PaymentMethod: &paymentmethod.PaymentMethod{
			ID:     "pm_1",
			Type:   types.PaymentMethodTypeCard,
			Status: status,
		},
	}
}

func TestSimulatedDefaultsToSuccess(t *testing.T) {
	p := NewSimulated(types.PaymentProvider1)

	res, err := p.Charge(context.Background(), chargeRequest(types.PaymentMethodStatusValid))
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCodeSuccess, res.Code)
	assert.NotEmpty(t, res.TransactionID)
	assert.Equal(t, 1, p.Calls())
}

func TestSimulatedCodeSequence(t *testing.T) {
	p := NewSimulated(types.PaymentProvider2,
		WithStatusCode(types.PaymentStatusCodeNSF),
		WithCodeSequence(types.PaymentStatusCodeExternalFailure, types.PaymentStatusCodeSuccess),
	)

	var got []types.PaymentStatusCode
	for i := 0; i < 3; i++ {
		res, err := p.Charge(context.Background(), chargeRequest(types.PaymentMethodStatusValid))
		require.NoError(t, err)
		got = append(got, res.Code)
	}

	assert.Equal(t, []types.PaymentStatusCode{
		types.PaymentStatusCodeExternalFailure,
		types.PaymentStatusCodeSuccess,
		types.PaymentStatusCodeNSF,
	}, got)
}

func TestSimulatedRejectsInvalidMethod(t *testing.T) {
	p := NewSimulated(types.PaymentProvider3)

	res, err := p.Charge(context.Background(), chargeRequest(types.PaymentMethodStatusExpired))
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCodeCardInvalid, res.Code)
	assert.Empty(t, res.TransactionID)
}

func TestSimulatedDelayHonorsContext(t *testing.T) {
	p := NewSimulated(types.PaymentProvider4, WithDelay(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Charge(ctx, chargeRequest(types.PaymentMethodStatusValid))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewSimulated(types.PaymentProvider1))

	p, err := r.Get(types.PaymentProvider1)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentProvider1, p.Provider())

	_, err = r.Get(types.PaymentProvider2)
	assert.True(t, ierr.Is(err, ierr.ErrProcessor))

	for _, provider := range types.PaymentProviders {
		_, err := NewSimulatedRegistry().Get(provider)
		assert.NoError(t, err)
	}
}

func TestSimulatedReplaysAcceptedIdempotencyKey(t *testing.T) {
	p := NewSimulated(types.PaymentProvider1)

	req := chargeRequest(types.PaymentMethodStatusValid)
	req.IdempotencyKey = "charge-abc"

	first, err := p.Charge(context.Background(), req)
	require.NoError(t, err)

	p.Respond(types.PaymentStatusCodeNSF)
	second, err := p.Charge(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, types.PaymentStatusCodeSuccess, second.Code)

	req.IdempotencyKey = "charge-def"
	third, err := p.Charge(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.PaymentStatusCodeNSF, third.Code)
	assert.Empty(t, third.TransactionID)
}
