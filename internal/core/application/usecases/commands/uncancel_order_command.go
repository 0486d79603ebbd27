package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrUncancelOrderCommandIsNotConstructed = errors.New(
	"UncancelOrderCommand must be created via NewUncancelOrderCommand constructor",
)

// UncancelOrderCommand restores a cancelled order to the status it was cancelled from.
type UncancelOrderCommand struct {
	orderTarget

	guard guard.ConstructorGuard
}

func NewUncancelOrderCommand(orderID, organizationID kernel.UUID) (UncancelOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return UncancelOrderCommand{}, err
	}

	return UncancelOrderCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c UncancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrUncancelOrderCommandIsNotConstructed)
}
