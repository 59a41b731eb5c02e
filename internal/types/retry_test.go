package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgingBucketFor(t *testing.T) {
	tests := []struct {
		days int
		want AgingBucket
	}{
		{-5, AgingBucket0To30},
		{0, AgingBucket0To30},
		{30, AgingBucket0To30},
		{31, AgingBucket31To60},
		{60, AgingBucket31To60},
		{61, AgingBucket61To180},
		{180, AgingBucket61To180},
		{181, AgingBucket181Plus},
		{10000, AgingBucket181Plus},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgingBucketFor(tt.days), "days=%d", tt.days)
	}
}

func TestAgingBucketFor_Monotonic(t *testing.T) {
	index := func(b AgingBucket) int {
		for i, bucket := range AgingBuckets {
			if bucket == b {
				return i
			}
		}
		return -1
	}

	prev := index(AgingBucketFor(-1))
	for d := 0; d <= 400; d++ {
		cur := index(AgingBucketFor(d))
		assert.NotEqual(t, -1, cur)
		assert.GreaterOrEqual(t, cur, prev, "days=%d", d)
		prev = cur
	}
}

func TestPaymentStatusCodePredicates(t *testing.T) {
	assert.True(t, PaymentStatusCodeSuccess.IsSuccess())
	assert.False(t, PaymentStatusCodeSuccess.IsFailure())

	for _, c := range []PaymentStatusCode{100, 101, 102, 200} {
		assert.True(t, c.IsProcessing(), c.String())
		assert.False(t, c.IsFailure(), c.String())
	}

	for _, c := range []PaymentStatusCode{605, 606, 607, 613, 615, 616, 777} {
		assert.True(t, c.IsHardDecline(), c.String())
	}
	assert.False(t, PaymentStatusCodeNSF.IsHardDecline())
	assert.False(t, PaymentStatusCodeCardGatewayBlock.IsHardDecline())

	for _, c := range []PaymentStatusCode{440, 441, 442, 443, 444, 445} {
		assert.True(t, c.IsNoPaymentMethod(), c.String())
	}
	assert.False(t, PaymentStatusCodeNotAttempted.IsNoPaymentMethod())

	assert.Equal(t, "NSF", PaymentStatusCodeNSF.String())
	assert.Equal(t, "UNKNOWN_999", PaymentStatusCode(999).String())
	assert.False(t, PaymentStatusCode(999).IsKnown())
}

func TestRoutingContextUnion(t *testing.T) {
	base := RoutingContext{RoutingContextNoProvider3}
	got := base.Union(RoutingContext{RoutingContextNoProvider1, RoutingContextNoProvider3})

	assert.Equal(t, RoutingContext{RoutingContextNoProvider3, RoutingContextNoProvider1}, got)
	assert.Equal(t, RoutingContext{RoutingContextNoProvider3}, base)
	assert.True(t, got.Has(RoutingContextNoProvider1))
	assert.False(t, got.Has(RoutingContextNoProvider2))
}

func TestOverdueTransitionFor(t *testing.T) {
	tests := []struct {
		days   int
		ok     bool
		status SubscriptionStatus
		rating BillingAccountRating
	}{
		{0, false, "", ""},
		{1, true, SubscriptionStatusPaymentFailed, ""},
		{29, true, SubscriptionStatusPaymentFailed, ""},
		{30, true, SubscriptionStatusOverdue, BillingAccountRatingD30},
		{60, true, SubscriptionStatusOverdue, BillingAccountRatingD60},
		{90, true, SubscriptionStatusOverdue, BillingAccountRatingD90},
		{120, true, SubscriptionStatusOverdue, BillingAccountRatingD120},
		{179, true, SubscriptionStatusOverdue, BillingAccountRatingD120},
		{180, true, SubscriptionStatusWrittenOff, BillingAccountRatingWrittenOff},
	}

	for _, tt := range tests {
		got, ok := OverdueTransitionFor(tt.days)
		assert.Equal(t, tt.ok, ok, "days=%d", tt.days)
		assert.Equal(t, tt.status, got.Status, "days=%d", tt.days)
		assert.Equal(t, tt.rating, got.Rating, "days=%d", tt.days)
	}
}
