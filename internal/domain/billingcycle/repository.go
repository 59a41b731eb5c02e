package billingcycle

import "context"

// Repository defines the interface for billing cycle persistence
type Repository interface {
	Create(ctx context.Context, bc *BillingCycle) error
	Get(ctx context.Context, id string) (*BillingCycle, error)
	Update(ctx context.Context, bc *BillingCycle) error
	// Delete soft deletes the cycle
	Delete(ctx context.Context, id string) error
	ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*BillingCycle, error)
}
