package ports

import (
	"context"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
)

// CustomerRepository defines the persistence contract for customer aggregates.
type CustomerRepository interface {
	Add(ctx context.Context, aggregate *customer.Customer) error
	Update(ctx context.Context, aggregate *customer.Customer) error

	// GetByPhoneForUpdate finds the customer keyed by (organization, phone) and locks it.
	// Returns an ObjectNotFoundError when no customer exists yet.
	GetByPhoneForUpdate(ctx context.Context, organizationID kernel.UUID, phone kernel.Phone) (*customer.Customer, error)
}
