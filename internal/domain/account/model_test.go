package account

import (
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFailureCounters(t *testing.T) {
	at := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	acct := &CustomerAccount{Balance: decimal.RequireFromString("11.99")}

	acct.RecordFailure(decimal.RequireFromString("11.99"), types.PaymentStatusCodeNSF, at)
	acct.RecordFailure(decimal.RequireFromString("11.99"), types.PaymentStatusCodeCardIssuerBlock, at.Add(time.Hour))
	acct.RecordFailure(decimal.RequireFromString("11.99"), types.PaymentStatusCodeExternalFailure, at.Add(2*time.Hour))

	assert.Equal(t, 1, acct.NSFCount)
	assert.Equal(t, 1, acct.CardBlockCount)
	require.NotNil(t, acct.FirstDelinquentDate)
	assert.True(t, acct.FirstDelinquentDate.Equal(at))
	assert.True(t, acct.LastFailedPaymentDate.Equal(at.Add(2*time.Hour)))
}

func TestRecordSuccessPaysDownBalance(t *testing.T) {
	at := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	acct := &CustomerAccount{Balance: decimal.RequireFromString("11.99"), FirstDelinquentDate: &at}

	acct.RecordSuccess(decimal.RequireFromString("11.99"), at)

	assert.True(t, acct.Balance.IsZero())
	assert.Nil(t, acct.FirstDelinquentDate)
	require.NotNil(t, acct.LastSuccessfulPaymentAmount)
	assert.Equal(t, "11.99", acct.LastSuccessfulPaymentAmount.StringFixed(2))

	acct.RecordSuccess(decimal.NewFromInt(5), at)
	assert.True(t, acct.Balance.IsZero())
}
