package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrResyncOrderCommandIsNotConstructed = errors.New(
	"ResyncOrderCommand must be created via NewResyncOrderCommand constructor",
)

// ResyncOrderCommand retries the fulfillment create of an order that never reached it.
type ResyncOrderCommand struct {
	orderTarget

	guard guard.ConstructorGuard
}

func NewResyncOrderCommand(orderID, organizationID kernel.UUID) (ResyncOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return ResyncOrderCommand{}, err
	}

	return ResyncOrderCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ResyncOrderCommand) Validate() error {
	return c.guard.Validate(ErrResyncOrderCommandIsNotConstructed)
}
