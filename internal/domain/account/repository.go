package account

import (
	"context"

	"github.com/flexprice/paycycle/internal/types"
)

// Repository defines the interface for customer account persistence
type Repository interface {
	Create(ctx context.Context, acct *CustomerAccount) error
	Get(ctx context.Context, id string) (*CustomerAccount, error)
	Update(ctx context.Context, acct *CustomerAccount) error
	// UpdateRating writes only the rating column, last write wins
	UpdateRating(ctx context.Context, id string, rating types.BillingAccountRating) error
}
