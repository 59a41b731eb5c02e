package types

// RetryAction is what the retry engine decided to do about a failed attempt
type RetryAction string

const (
	RetryActionImmediateRetry          RetryAction = "IMMEDIATE_RETRY"
	RetryActionRescheduleNextFriday    RetryAction = "RESCHEDULE_NEXT_FRIDAY"
	RetryActionRescheduleNextFridayEOM RetryAction = "RESCHEDULE_NEXT_FRIDAY_EOM"
	RetryActionAlertBackoff            RetryAction = "ALERT_BACKOFF"
	RetryActionBackoff                 RetryAction = "BACKOFF"
	RetryActionNotPossible             RetryAction = "NOT_POSSIBLE"
)

func (a RetryAction) String() string {
	return string(a)
}

// IsBackoff reports actions that never produce a new payment
func (a RetryAction) IsBackoff() bool {
	return a == RetryActionBackoff || a == RetryActionAlertBackoff
}

// RetryLogicVersion is stamped on every payment the scheduler creates
const RetryLogicVersion = 1

// AgingBucket is a days-overdue range used to look up retry behavior
type AgingBucket string

const (
	AgingBucket0To30   AgingBucket = "D0_30"
	AgingBucket31To60  AgingBucket = "D31_60"
	AgingBucket61To180 AgingBucket = "D61_180"
	AgingBucket181Plus AgingBucket = "D181_PLUS"
)

// AgingBuckets lists the buckets in ascending order
var AgingBuckets = []AgingBucket{
	AgingBucket0To30,
	AgingBucket31To60,
	AgingBucket61To180,
	AgingBucket181Plus,
}

func (b AgingBucket) String() string {
	return string(b)
}

// AgingBucketFor maps days overdue to its bucket. Upper bounds are inclusive
// and negative values fall into the first bucket.
func AgingBucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 30:
		return AgingBucket0To30
	case daysOverdue <= 60:
		return AgingBucket31To60
	case daysOverdue <= 180:
		return AgingBucket61To180
	default:
		return AgingBucket181Plus
	}
}
