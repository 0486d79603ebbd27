package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrConfirmOrderCommandIsNotConstructed = errors.New(
	"ConfirmOrderCommand must be created via NewConfirmOrderCommand constructor",
)

// ConfirmOrderCommand confirms a pending or scheduled order, optionally correcting the
// delivery details.
type ConfirmOrderCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	patch *order.DeliveryPatch

	guard guard.ConstructorGuard
}

func NewConfirmOrderCommand(orderID, organizationID kernel.UUID, patch *order.DeliveryPatch) (ConfirmOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return ConfirmOrderCommand{}, err
	}

	return ConfirmOrderCommand{
		orderTarget: target,
		patch:       patch,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmOrderCommand) Validate() error {
	return c.guard.Validate(ErrConfirmOrderCommandIsNotConstructed)
}

// Patch returns the delivery corrections, nil when there are none.
func (c ConfirmOrderCommand) Patch() *order.DeliveryPatch {
	return c.patch
}
