package paymentmethod

import "context"

// Repository defines the interface for payment method and processor registration persistence
type Repository interface {
	Create(ctx context.Context, pm *PaymentMethod) error
	Get(ctx context.Context, id string) (*PaymentMethod, error)
	Update(ctx context.Context, pm *PaymentMethod) error
	// Delete soft deletes the method
	Delete(ctx context.Context, id string) error
	// ListByCustomerID returns non-deleted methods ordered by creation time
	ListByCustomerID(ctx context.Context, customerID string) ([]*PaymentMethod, error)

	CreateProcessor(ctx context.Context, p *PaymentMethodProcessor) error
	// ListProcessors returns every registration of the method, tombstoned ones included
	ListProcessors(ctx context.Context, paymentMethodID string) ([]*PaymentMethodProcessor, error)
	// DeleteProcessor tombstones the registration
	DeleteProcessor(ctx context.Context, id string) error
}
