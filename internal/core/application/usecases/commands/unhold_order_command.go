package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrUnholdOrderCommandIsNotConstructed = errors.New(
	"UnholdOrderCommand must be created via NewUnholdOrderCommand constructor",
)

// UnholdOrderCommand releases a held order back to the status it was held from.
type UnholdOrderCommand struct {
	orderTarget

	guard guard.ConstructorGuard
}

func NewUnholdOrderCommand(orderID, organizationID kernel.UUID) (UnholdOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return UnholdOrderCommand{}, err
	}

	return UnholdOrderCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c UnholdOrderCommand) Validate() error {
	return c.guard.Validate(ErrUnholdOrderCommandIsNotConstructed)
}
