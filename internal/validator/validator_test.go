package validator

import (
	"testing"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type charge struct {
	AccountID string          `validate:"required"`
	Amount    decimal.Decimal `validate:"gt=0"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(charge{AccountID: "acct_1", Amount: decimal.RequireFromString("11.99")}))

	err := ValidateRequest(charge{AccountID: "acct_1", Amount: decimal.Zero})
	assert.True(t, ierr.IsValidation(err))
	assert.Contains(t, ierr.ReportableDetails(err), "Amount")

	err = ValidateRequest(charge{Amount: decimal.NewFromInt(1)})
	assert.True(t, ierr.IsValidation(err))
}
