package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// orderTarget identifies the order a command acts on and the organization of the caller.
type orderTarget struct {
	orderID        kernel.UUID
	organizationID kernel.UUID
}

func newOrderTarget(orderID, organizationID kernel.UUID) (orderTarget, error) {
	if err := errors.Join(orderID.Validate(), organizationID.Validate()); err != nil {
		return orderTarget{}, err
	}
	return orderTarget{orderID: orderID, organizationID: organizationID}, nil
}

// OrderID returns the order the command acts on.
func (t orderTarget) OrderID() kernel.UUID {
	return t.orderID
}

// OrganizationID returns the organization of the caller.
func (t orderTarget) OrganizationID() kernel.UUID {
	return t.organizationID
}

// TransitionResult describes the order after a command.
type TransitionResult struct {
	Order *order.Order

	// NoOp is set when the order already was in the requested state: a second cancel or a
	// finalize on an order that left the queue.
	NoOp bool

	// SyncFailed is set when the transition committed but creating the order in the
	// fulfillment system failed. The order is in sync_error.
	SyncFailed bool
}
