package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
)

// ConversionNotifier reports a finalized purchase to the ad attribution platform.
// Failures never affect the order.
type ConversionNotifier interface {
	NotifyPurchase(ctx context.Context, s store.Store, o *order.Order) error
}

// EventPublisher publishes committed order status changes.
type EventPublisher interface {
	PublishStatusChanges(ctx context.Context, events []order.StatusChanged) error
}

// TaskDispatcher runs best-effort work after the request that produced it has returned.
// Submit fails only when the dispatcher is stopped or its queue is full.
type TaskDispatcher interface {
	Submit(name string, task func(ctx context.Context) error) error
}

// SweepLocker keeps a sweep from running on two replicas at once.
type SweepLocker interface {
	// TryLock returns acquired=false without error when another holder has the lock.
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}
