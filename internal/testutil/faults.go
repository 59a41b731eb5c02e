package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/subscription"
)

// Faults holds errors to return for specific entity ids. It is shared by the
// failing store wrappers below.
type Faults struct {
	mu   sync.Mutex
	errs map[string]error
}

func NewFaults() *Faults {
	return &Faults{errs: make(map[string]error)}
}

// Set makes the next writes touching id fail with err
func (f *Faults) Set(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[id] = err
}

func (f *Faults) Clear(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, id)
}

func (f *Faults) get(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[id]
}

// FailingSubscriptionStore fails Update for subscriptions with an injected fault
type FailingSubscriptionStore struct {
	subscription.Repository
	Faults *Faults
}

func (s *FailingSubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if err := s.Faults.get(sub.ID); err != nil {
		return err
	}
	return s.Repository.Update(ctx, sub)
}

// FailingBillingCycleStore fails Create and Update for cycles of a subscription with an injected fault
type FailingBillingCycleStore struct {
	billingcycle.Repository
	Faults *Faults
}

func (s *FailingBillingCycleStore) Create(ctx context.Context, bc *billingcycle.BillingCycle) error {
	if err := s.Faults.get(bc.SubscriptionID); err != nil {
		return err
	}
	return s.Repository.Create(ctx, bc)
}

func (s *FailingBillingCycleStore) Update(ctx context.Context, bc *billingcycle.BillingCycle) error {
	if err := s.Faults.get(bc.SubscriptionID); err != nil {
		return err
	}
	return s.Repository.Update(ctx, bc)
}

// FailingPaymentStore fails Create for retries of a payment with an injected fault
type FailingPaymentStore struct {
	payment.Repository
	Faults *Faults
}

func (s *FailingPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p.RetryPrevPaymentID != nil {
		if err := s.Faults.get(*p.RetryPrevPaymentID); err != nil {
			return err
		}
	}
	return s.Repository.Create(ctx, p)
}
