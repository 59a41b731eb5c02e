package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for subscription persistence
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	GetByCustomerID(ctx context.Context, customerID string) (*Subscription, error)

	// ListAgingCandidates returns unlocked subscriptions in one of filter.Statuses whose
	// current billing cycle ends at or before filter.CycleEndBefore
	ListAgingCandidates(ctx context.Context, filter *AgingFilter) ([]*Subscription, error)

	// AcquireLock moves processing_status from NONE to PROCESSING and stamps
	// last_marking_start. Returns ErrLockNotAcquired when already held.
	AcquireLock(ctx context.Context, id string, at time.Time) error
	// ReleaseLock unconditionally resets processing_status to NONE and stamps last_marking_end
	ReleaseLock(ctx context.Context, id string, at time.Time) error
	// ReleaseStaleLocks frees locks whose last_marking_start is before olderThan
	ReleaseStaleLocks(ctx context.Context, olderThan time.Time, at time.Time) (int, error)
}
