package payment

import (
	"context"
	"time"
)

// Repository defines the interface for payment persistence
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	ListBySubscriptionID(ctx context.Context, subscriptionID string) ([]*Payment, error)
	// ListDue returns scheduled payments whose date is at or before the given time, oldest first
	ListDue(ctx context.Context, before time.Time, limit int) ([]*Payment, error)
}
