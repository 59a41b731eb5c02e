package types

// EventName is the topic-level name of a lifecycle event
type EventName string

const (
	EventPaymentRetryScheduled EventName = "payment.retry.scheduled"
	EventPaymentRetryAlert     EventName = "payment.retry.alert"
	EventPaymentRetryStopped   EventName = "payment.retry.stopped"
	EventPaymentProcessed      EventName = "payment.processed"
	EventSubscriptionAged      EventName = "subscription.aged"
)

func (e EventName) String() string {
	return string(e)
}
