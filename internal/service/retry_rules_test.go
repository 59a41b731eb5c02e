package service

import (
	"testing"
	"time"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRetryDecision(t *testing.T) {
	tests := []struct {
		name          string
		code          types.PaymentStatusCode
		daysOverdue   int
		totalRetryCnt int
		wantAction    types.RetryAction
		wantTrack     types.PaymentTrack
		wantBucket    types.AgingBucket
		wantPatch     types.RoutingContext
	}{
		{
			name:        "external failure retries immediately on any card",
			code:        types.PaymentStatusCodeExternalFailure,
			daysOverdue: 10,
			wantAction:  types.RetryActionImmediateRetry,
			wantTrack:   types.PaymentTrackAnyCard,
			wantBucket:  types.AgingBucket0To30,
		},
		{
			name:        "internal failure alerts and backs off",
			code:        types.PaymentStatusCodeInternalFailure,
			daysOverdue: 5,
			wantAction:  types.RetryActionAlertBackoff,
			wantBucket:  types.AgingBucket0To30,
		},
		{
			name:        "internal failure past 60 days backs off silently",
			code:        types.PaymentStatusCodeInternalFailure,
			daysOverdue: 61,
			wantAction:  types.RetryActionBackoff,
			wantBucket:  types.AgingBucket61To180,
		},
		{
			name:        "external failure past 180 days backs off",
			code:        types.PaymentStatusCodeExternalFailure,
			daysOverdue: 181,
			wantAction:  types.RetryActionBackoff,
			wantBucket:  types.AgingBucket181Plus,
		},
		{
			name:          "nsf with many retries in 31-60 excludes provider 1",
			code:          types.PaymentStatusCodeNSF,
			daysOverdue:   45,
			totalRetryCnt: 9,
			wantAction:    types.RetryActionRescheduleNextFriday,
			wantTrack:     types.PaymentTrackBankCard,
			wantBucket:    types.AgingBucket31To60,
			wantPatch:     types.RoutingContext{types.RoutingContextNoProvider1},
		},
		{
			name:          "nsf at the exclusion threshold keeps provider 1",
			code:          types.PaymentStatusCodeNSF,
			daysOverdue:   45,
			totalRetryCnt: 8,
			wantAction:    types.RetryActionRescheduleNextFriday,
			wantTrack:     types.PaymentTrackBankCard,
			wantBucket:    types.AgingBucket31To60,
		},
		{
			name:          "exclusion does not apply outside 31-60",
			code:          types.PaymentStatusCodeNSF,
			daysOverdue:   20,
			totalRetryCnt: 20,
			wantAction:    types.RetryActionRescheduleNextFriday,
			wantTrack:     types.PaymentTrackBankCard,
			wantBucket:    types.AgingBucket0To30,
		},
		{
			name:          "no remaining bank card processor is forced to backoff after 12 retries",
			code:          types.PaymentStatusCodeNoRemainingBankCardProcessor,
			daysOverdue:   100,
			totalRetryCnt: 13,
			wantAction:    types.RetryActionBackoff,
			wantBucket:    types.AgingBucket61To180,
		},
		{
			name:          "no remaining bank card processor reschedules eom at 12 retries",
			code:          types.PaymentStatusCodeNoRemainingBankCardProcessor,
			daysOverdue:   100,
			totalRetryCnt: 12,
			wantAction:    types.RetryActionRescheduleNextFridayEOM,
			wantTrack:     types.PaymentTrackBankCard,
			wantBucket:    types.AgingBucket61To180,
		},
		{
			name:          "retry later is forced to backoff after 12 retries",
			code:          types.PaymentStatusCodeRetryLater,
			daysOverdue:   61,
			totalRetryCnt: 20,
			wantAction:    types.RetryActionBackoff,
			wantBucket:    types.AgingBucket61To180,
		},
		{
			name:        "card gateway block reschedules eom",
			code:        types.PaymentStatusCodeCardGatewayBlock,
			daysOverdue: 31,
			wantAction:  types.RetryActionRescheduleNextFridayEOM,
			wantTrack:   types.PaymentTrackBankCard,
			wantBucket:  types.AgingBucket31To60,
		},
		{
			name:        "negative overdue falls in the first bucket",
			code:        types.PaymentStatusCodeExternalFailure,
			daysOverdue: -4,
			wantAction:  types.RetryActionImmediateRetry,
			wantTrack:   types.PaymentTrackAnyCard,
			wantBucket:  types.AgingBucket0To30,
		},
		{
			name:        "untabulated code backs off",
			code:        types.PaymentStatusCodeDisputed,
			daysOverdue: 3,
			wantAction:  types.RetryActionBackoff,
			wantBucket:  types.AgingBucket0To30,
		},
		{
			name:        "unknown code backs off",
			code:        types.PaymentStatusCode(999),
			daysOverdue: 3,
			wantAction:  types.RetryActionBackoff,
			wantBucket:  types.AgingBucket0To30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := ResolveRetryDecision(tt.code, tt.daysOverdue, tt.totalRetryCnt)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, decision.Action)
			assert.Equal(t, tt.wantTrack, decision.Track)
			assert.Equal(t, tt.wantBucket, decision.Bucket)
			assert.Equal(t, tt.code, decision.Code)
			assert.Equal(t, tt.totalRetryCnt, decision.TotalRetryCnt)
			if tt.wantPatch == nil {
				assert.Empty(t, decision.RoutingCtxPatch)
			} else {
				assert.Equal(t, tt.wantPatch, decision.RoutingCtxPatch)
			}
		})
	}
}

func TestResolveRetryDecisionNotPossible(t *testing.T) {
	codes := []types.PaymentStatusCode{
		types.PaymentStatusCodeNoValidAnyCard,
		types.PaymentStatusCodeNoRemainingAnyCardProcessor,
		types.PaymentStatusCodeNoValidBankEFT,
		types.PaymentStatusCodeEFTNSF,
		types.PaymentStatusCodeEFTAccountClosed,
	}
	for _, code := range codes {
		for _, days := range []int{0, 10, 45, 100, 200} {
			decision, err := ResolveRetryDecision(code, days, 0)
			assert.Nil(t, decision, "code %s days %d", code, days)
			require.Error(t, err, "code %s days %d", code, days)
			assert.True(t, ierr.IsRetryNotPossible(err), "code %s days %d", code, days)
		}
	}
}

func TestResolveRetryDecisionIsPure(t *testing.T) {
	first, err := ResolveRetryDecision(types.PaymentStatusCodeNSF, 45, 9)
	require.NoError(t, err)

	// mutating a returned patch must not leak into later decisions
	first.RoutingCtxPatch[0] = types.RoutingContextNoProvider4

	second, err := ResolveRetryDecision(types.PaymentStatusCodeNSF, 45, 9)
	require.NoError(t, err)
	assert.Equal(t, types.RoutingContext{types.RoutingContextNoProvider1}, second.RoutingCtxPatch)

	third, err := ResolveRetryDecision(types.PaymentStatusCodeNSF, 45, 0)
	require.NoError(t, err)
	assert.Empty(t, third.RoutingCtxPatch)
}

func TestRetryDate(t *testing.T) {
	tuesday := time.Date(2026, time.February, 24, 15, 30, 0, 0, time.UTC)
	friday := time.Date(2026, time.February, 27, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		action types.RetryAction
		ref    time.Time
		want   time.Time
	}{
		{
			name:   "immediate keeps the reference date",
			action: types.RetryActionImmediateRetry,
			ref:    tuesday,
			want:   tuesday,
		},
		{
			name:   "next friday from a tuesday",
			action: types.RetryActionRescheduleNextFriday,
			ref:    tuesday,
			want:   time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "next friday from a friday is a week later",
			action: types.RetryActionRescheduleNextFriday,
			ref:    friday,
			want:   time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "friday eom on the last friday is that day",
			action: types.RetryActionRescheduleNextFridayEOM,
			ref:    friday,
			want:   time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "friday eom after the last friday rolls to next month",
			action: types.RetryActionRescheduleNextFridayEOM,
			ref:    time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
			want:   time.Date(2026, time.March, 27, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RetryDate(tt.action, tt.ref))
		})
	}
}
