package testutil

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/account"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
)

// InMemoryAccountStore implements account.Repository
type InMemoryAccountStore struct {
	*InMemoryStore[*account.CustomerAccount]
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		InMemoryStore: NewInMemoryStore(func(a *account.CustomerAccount) *account.CustomerAccount {
			if a == nil {
				return nil
			}
			c := *a
			return &c
		}),
	}
}

func (s *InMemoryAccountStore) Create(ctx context.Context, acct *account.CustomerAccount) error {
	if acct == nil {
		return ierr.NewError("account cannot be nil").
			WithHint("Account cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, acct.ID, acct)
}

func (s *InMemoryAccountStore) Get(ctx context.Context, id string) (*account.CustomerAccount, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryAccountStore) Update(ctx context.Context, acct *account.CustomerAccount) error {
	return s.InMemoryStore.Update(ctx, acct.ID, acct)
}

func (s *InMemoryAccountStore) UpdateRating(ctx context.Context, id string, rating types.BillingAccountRating) error {
	return s.Mutate(ctx, id, func(a *account.CustomerAccount) error {
		now := time.Now().UTC()
		a.Rating = rating
		a.LastMarkingDate = &now
		a.UpdatedAt = now
		return nil
	})
}
