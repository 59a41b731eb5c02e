package testutil

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	ierr "github.com/flexprice/paycycle/internal/errors"
)

// InMemoryBillingCycleStore implements billingcycle.Repository
type InMemoryBillingCycleStore struct {
	*InMemoryStore[*billingcycle.BillingCycle]
}

func NewInMemoryBillingCycleStore() *InMemoryBillingCycleStore {
	return &InMemoryBillingCycleStore{
		InMemoryStore: NewInMemoryStore(func(bc *billingcycle.BillingCycle) *billingcycle.BillingCycle {
			if bc == nil {
				return nil
			}
			c := *bc
			return &c
		}),
	}
}

func (s *InMemoryBillingCycleStore) Create(ctx context.Context, bc *billingcycle.BillingCycle) error {
	if bc == nil {
		return ierr.NewError("billing cycle cannot be nil").
			WithHint("Billing cycle cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := bc.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, bc.ID, bc)
}

func (s *InMemoryBillingCycleStore) Get(ctx context.Context, id string) (*billingcycle.BillingCycle, error) {
	bc, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bc.Deleted {
		return nil, ierr.NewError("billing cycle not found").
			WithHintf("Billing cycle %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return bc, nil
}

func (s *InMemoryBillingCycleStore) Update(ctx context.Context, bc *billingcycle.BillingCycle) error {
	return s.InMemoryStore.Update(ctx, bc.ID, bc)
}

func (s *InMemoryBillingCycleStore) Delete(ctx context.Context, id string) error {
	return s.Mutate(ctx, id, func(bc *billingcycle.BillingCycle) error {
		now := time.Now().UTC()
		bc.Deleted = true
		bc.DeletedAt = &now
		return nil
	})
}

func (s *InMemoryBillingCycleStore) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*billingcycle.BillingCycle, error) {
	return s.List(ctx, subscriptionID, func(_ context.Context, bc *billingcycle.BillingCycle, filter interface{}) bool {
		return !bc.Deleted && bc.SubscriptionID == filter.(string)
	}, func(i, j *billingcycle.BillingCycle) bool {
		return i.StartDate.Before(j.StartDate)
	})
}
