// Package commands contains business operations that modify order state.
// Every command follows the same pattern: validate the command, lock the order inside a
// unit of work, apply the transition, commit, then talk to the fulfillment system either
// inline or through the background dispatcher.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// CustomerRepoFactory provides access to customer repository within a transaction.
	CustomerRepoFactory interface {
		CustomerRepository() ports.CustomerRepository
	}

	// StoreRepoFactory provides access to store repository within a transaction.
	StoreRepoFactory interface {
		StoreRepository() ports.StoreRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// UoW manages transactions across orders, customers and the store sequence.
	// Used by intake and by every operation that finalizes an order.
	UoW interface {
		TxManager
		OrderRepoFactory
		CustomerRepoFactory
		StoreRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
