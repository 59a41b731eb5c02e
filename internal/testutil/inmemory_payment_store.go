package testutil

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/payment"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore(copyPayment),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	c := *p
	c.RetryRoutingCtx = append(types.RoutingContext(nil), p.RetryRoutingCtx...)
	if p.RetryTraceData != nil {
		trace := *p.RetryTraceData
		c.RetryTraceData = &trace
	}
	return &c
}

func paymentCreatedAsc(i, j *payment.Payment) bool {
	return i.CreatedAt.Before(j.CreatedAt)
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	// retry_prev_payment_id is unique: a payment is retried at most once
	if p.RetryPrevPaymentID != nil {
		existing, _ := s.List(ctx, *p.RetryPrevPaymentID, func(_ context.Context, item *payment.Payment, filter interface{}) bool {
			return item.RetryPrevPaymentID != nil && *item.RetryPrevPaymentID == filter.(string)
		}, nil)
		if len(existing) > 0 {
			return ierr.NewError("payment already retried").
				WithHint("A retry for this payment already exists").
				WithReportableDetails(map[string]any{
					"retry_prev_payment_id": *p.RetryPrevPaymentID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.Update(ctx, p.ID, p)
}

func (s *InMemoryPaymentStore) ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*payment.Payment, error) {
	return s.List(ctx, subscriptionID, func(_ context.Context, p *payment.Payment, filter interface{}) bool {
		return lo.FromPtr(p.SubscriptionID) == filter.(string)
	}, paymentCreatedAsc)
}

func (s *InMemoryPaymentStore) ListDue(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	due, err := s.List(ctx, before, func(_ context.Context, p *payment.Payment, filter interface{}) bool {
		return p.Status == types.PaymentStatusScheduled && !p.Date.After(filter.(time.Time))
	}, func(i, j *payment.Payment) bool {
		return i.Date.Before(j.Date)
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// Chain walks retry_prev_payment_id back from id and returns the chain oldest first
func (s *InMemoryPaymentStore) Chain(ctx context.Context, id string) ([]*payment.Payment, error) {
	var chain []*payment.Payment
	for next := &id; next != nil; {
		p, err := s.Get(ctx, *next)
		if err != nil {
			return nil, err
		}
		chain = append([]*payment.Payment{p}, chain...)
		next = p.RetryPrevPaymentID
	}
	return chain, nil
}
