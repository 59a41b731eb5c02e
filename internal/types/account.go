package types

// CustomerAccountType is what the account bills for
type CustomerAccountType string

const (
	CustomerAccountTypeSubscription CustomerAccountType = "SUBSCRIPTION"
)

// BillingAccountStatus is whether the account can still be billed
type BillingAccountStatus string

const (
	BillingAccountStatusOpen   BillingAccountStatus = "OPEN"
	BillingAccountStatusClosed BillingAccountStatus = "CLOSED"
)

// BillingAccountRating is a coarse delinquency classification
type BillingAccountRating string

const (
	BillingAccountRatingNew        BillingAccountRating = "NEW"
	BillingAccountRatingOK         BillingAccountRating = "OK"
	BillingAccountRatingD30        BillingAccountRating = "D30"
	BillingAccountRatingD60        BillingAccountRating = "D60"
	BillingAccountRatingD90        BillingAccountRating = "D90"
	BillingAccountRatingD120       BillingAccountRating = "D120"
	BillingAccountRatingWrittenOff BillingAccountRating = "WRITTEN_OFF"
)

func (r BillingAccountRating) String() string {
	return string(r)
}

// OverdueTransition is the subscription status and account rating implied by
// a number of days overdue. Rating is empty when it should be left unchanged.
type OverdueTransition struct {
	Status SubscriptionStatus
	Rating BillingAccountRating
}

// OverdueTransitionFor maps days overdue to the aging outcome. ok is false
// when the subscription should keep its current status.
func OverdueTransitionFor(daysOverdue int) (t OverdueTransition, ok bool) {
	switch {
	case daysOverdue >= 180:
		return OverdueTransition{SubscriptionStatusWrittenOff, BillingAccountRatingWrittenOff}, true
	case daysOverdue >= 120:
		return OverdueTransition{SubscriptionStatusOverdue, BillingAccountRatingD120}, true
	case daysOverdue >= 90:
		return OverdueTransition{SubscriptionStatusOverdue, BillingAccountRatingD90}, true
	case daysOverdue >= 60:
		return OverdueTransition{SubscriptionStatusOverdue, BillingAccountRatingD60}, true
	case daysOverdue >= 30:
		return OverdueTransition{SubscriptionStatusOverdue, BillingAccountRatingD30}, true
	case daysOverdue > 0:
		return OverdueTransition{Status: SubscriptionStatusPaymentFailed}, true
	}
	return OverdueTransition{}, false
}
