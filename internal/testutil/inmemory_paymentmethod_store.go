package testutil

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentMethodStore implements paymentmethod.Repository
type InMemoryPaymentMethodStore struct {
	*InMemoryStore[*paymentmethod.PaymentMethod]
	processors *InMemoryStore[*paymentmethod.PaymentMethodProcessor]
}

func NewInMemoryPaymentMethodStore() *InMemoryPaymentMethodStore {
	return &InMemoryPaymentMethodStore{
		InMemoryStore: NewInMemoryStore(func(pm *paymentmethod.PaymentMethod) *paymentmethod.PaymentMethod {
			if pm == nil {
				return nil
			}
			c := *pm
			return &c
		}),
		processors: NewInMemoryStore(func(p *paymentmethod.PaymentMethodProcessor) *paymentmethod.PaymentMethodProcessor {
			if p == nil {
				return nil
			}
			c := *p
			return &c
		}),
	}
}

func (s *InMemoryPaymentMethodStore) Create(ctx context.Context, pm *paymentmethod.PaymentMethod) error {
	if pm == nil {
		return ierr.NewError("payment method cannot be nil").
			WithHint("Payment method cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := pm.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, pm.ID, pm)
}

func (s *InMemoryPaymentMethodStore) Get(ctx context.Context, id string) (*paymentmethod.PaymentMethod, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPaymentMethodStore) Update(ctx context.Context, pm *paymentmethod.PaymentMethod) error {
	return s.InMemoryStore.Update(ctx, pm.ID, pm)
}

func (s *InMemoryPaymentMethodStore) Delete(ctx context.Context, id string) error {
	return s.Mutate(ctx, id, func(pm *paymentmethod.PaymentMethod) error {
		now := time.Now().UTC()
		pm.Deleted = true
		pm.DeletedAt = &now
		pm.Default = false
		return nil
	})
}

func (s *InMemoryPaymentMethodStore) ListByCustomerID(ctx context.Context, customerID string) ([]*paymentmethod.PaymentMethod, error) {
	return s.List(ctx, customerID, func(_ context.Context, pm *paymentmethod.PaymentMethod, filter interface{}) bool {
		return !pm.Deleted && pm.CustomerID == filter.(string)
	}, func(i, j *paymentmethod.PaymentMethod) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemoryPaymentMethodStore) CreateProcessor(ctx context.Context, p *paymentmethod.PaymentMethodProcessor) error {
	if p == nil {
		return ierr.NewError("payment method processor cannot be nil").
			WithHint("Payment method processor cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return s.processors.Create(ctx, p.ID, p)
}

func (s *InMemoryPaymentMethodStore) ListProcessors(ctx context.Context, paymentMethodID string) ([]*paymentmethod.PaymentMethodProcessor, error) {
	return s.processors.List(ctx, paymentMethodID, func(_ context.Context, p *paymentmethod.PaymentMethodProcessor, filter interface{}) bool {
		return p.PaymentMethodID == filter.(string)
	}, func(i, j *paymentmethod.PaymentMethodProcessor) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemoryPaymentMethodStore) DeleteProcessor(ctx context.Context, id string) error {
	return s.processors.Mutate(ctx, id, func(p *paymentmethod.PaymentMethodProcessor) error {
		p.ProcessorExternalID = lo.ToPtr(types.ProcessorExternalIDDeleted)
		return nil
	})
}

// Clear removes methods and registrations
func (s *InMemoryPaymentMethodStore) Clear() {
	s.InMemoryStore.Clear()
	s.processors.Clear()
}
