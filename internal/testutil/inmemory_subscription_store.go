package testutil

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/subscription"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository. Aging
// candidates are joined against the billing cycle store it is given.
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
	cycles *InMemoryBillingCycleStore
}

func NewInMemorySubscriptionStore(cycles *InMemoryBillingCycleStore) *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore(func(sub *subscription.Subscription) *subscription.Subscription {
			if sub == nil {
				return nil
			}
			c := *sub
			return &c
		}),
		cycles: cycles,
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	if sub.ProcessingStatus == "" {
		sub.ProcessingStatus = types.SubscriptionProcessingStatusNone
	}
	return s.InMemoryStore.Create(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.InMemoryStore.Get(ctx, id)
}

// Update never touches the lock columns, those belong to AcquireLock and ReleaseLock
func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	return s.Mutate(ctx, sub.ID, func(stored *subscription.Subscription) error {
		stored.Status = sub.Status
		stored.StartDate = sub.StartDate
		stored.InactiveAfter = sub.InactiveAfter
		stored.CurrentBillingCycleID = sub.CurrentBillingCycleID
		stored.Amount = sub.Amount
		stored.PaymentFailureCnt = sub.PaymentFailureCnt
		stored.UpdatedAt = sub.UpdatedAt
		stored.UpdatedBy = sub.UpdatedBy
		return nil
	})
}

func (s *InMemorySubscriptionStore) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	subs, err := s.List(ctx, customerID, func(_ context.Context, sub *subscription.Subscription, filter interface{}) bool {
		return sub.CustomerID == filter.(string)
	}, func(i, j *subscription.Subscription) bool {
		return i.CreatedAt.After(j.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHintf("No subscription found for customer %s", customerID).
			Mark(ierr.ErrNotFound)
	}
	return subs[0], nil
}

func (s *InMemorySubscriptionStore) ListAgingCandidates(ctx context.Context, filter *subscription.AgingFilter) ([]*subscription.Subscription, error) {
	subs, err := s.List(ctx, filter, func(ctx context.Context, sub *subscription.Subscription, f interface{}) bool {
		af := f.(*subscription.AgingFilter)
		if sub.IsLocked() || !lo.Contains(af.Statuses, sub.Status) || sub.CurrentBillingCycleID == nil {
			return false
		}
		bc, err := s.cycles.Get(ctx, *sub.CurrentBillingCycleID)
		if err != nil {
			return false
		}
		return !bc.EndDate.After(af.CycleEndBefore)
	}, func(i, j *subscription.Subscription) bool {
		return i.ID < j.ID
	})
	if err != nil {
		return nil, err
	}
	if filter.Limit > 0 && len(subs) > filter.Limit {
		subs = subs[:filter.Limit]
	}
	return subs, nil
}

func (s *InMemorySubscriptionStore) AcquireLock(ctx context.Context, id string, at time.Time) error {
	return s.Mutate(ctx, id, func(sub *subscription.Subscription) error {
		if sub.IsLocked() {
			return ierr.NewError("subscription lock not acquired").
				WithHintf("Subscription %s is already being processed", id).
				Mark(ierr.ErrLockNotAcquired)
		}
		sub.ProcessingStatus = types.SubscriptionProcessingStatusProcessing
		sub.LastMarkingStart = &at
		return nil
	})
}

func (s *InMemorySubscriptionStore) ReleaseLock(ctx context.Context, id string, at time.Time) error {
	return s.Mutate(ctx, id, func(sub *subscription.Subscription) error {
		sub.ProcessingStatus = types.SubscriptionProcessingStatusNone
		sub.LastMarkingEnd = &at
		return nil
	})
}

func (s *InMemorySubscriptionStore) ReleaseStaleLocks(ctx context.Context, olderThan time.Time, at time.Time) (int, error) {
	stale, err := s.List(ctx, olderThan, func(_ context.Context, sub *subscription.Subscription, f interface{}) bool {
		return sub.IsLocked() && sub.LastMarkingStart != nil && sub.LastMarkingStart.Before(f.(time.Time))
	}, nil)
	if err != nil {
		return 0, err
	}
	for _, sub := range stale {
		if err := s.ReleaseLock(ctx, sub.ID, at); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}
