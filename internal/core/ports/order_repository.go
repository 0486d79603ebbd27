package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Orders are never deleted.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id without locking.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and locks its row until the surrounding
	// transaction ends. Concurrent transitions on the same order serialize here.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// FindExpiredQueued returns queued orders whose offer window ended before now,
	// oldest first.
	FindExpiredQueued(ctx context.Context, now time.Time, limit int) ([]*order.Order, error)

	// FindScheduledDue returns scheduled orders whose scheduled date is on or before day.
	FindScheduledDue(ctx context.Context, day time.Time, limit int) ([]*order.Order, error)

	// FindRecentByPhone returns orders of the organization placed with phone since the given
	// time, newest first. The order identified by excludeID is left out when set.
	FindRecentByPhone(
		ctx context.Context,
		organizationID kernel.UUID,
		phone kernel.Phone,
		since time.Time,
		excludeID *kernel.UUID,
	) ([]*order.Order, error)
}
