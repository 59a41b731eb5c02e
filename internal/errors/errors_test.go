package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderMarkAndMatch(t *testing.T) {
	err := NewError("no retry path").
		WithHint("Payment can not be retried").
		WithReportableDetails(map[string]any{
			"code":   444,
			"bucket": "D0_30",
		}).
		Mark(ErrRetryNotPossible)

	assert.True(t, IsRetryNotPossible(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusFromErr(err))
	assert.Equal(t, "Payment can not be retried", DisplayMessage(err))

	details := ReportableDetails(err)
	assert.Equal(t, "D0_30", details["bucket"])
	assert.EqualValues(t, 444, details["code"])
}

func TestWithErrorKeepsCause(t *testing.T) {
	cause := NewError("lock held").Mark(ErrLockNotAcquired)
	err := WithError(cause).WithMessage("cancel subscription").Mark(ErrInvalidOperation)

	assert.True(t, IsLockNotAcquired(err))
	assert.True(t, IsInvalidOperation(err))
	assert.Equal(t, "An unexpected error occurred", DisplayMessage(err))
}

func TestHTTPStatusFromUnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromErr(assert.AnError))
}
