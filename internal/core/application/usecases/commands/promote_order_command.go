package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrPromoteOrderCommandIsNotConstructed = errors.New(
	"PromoteOrderCommand must be created via NewPromoteOrderCommand constructor",
)

// PromoteOrderCommand moves a test order into the live flow.
type PromoteOrderCommand struct {
	orderTarget

	guard guard.ConstructorGuard
}

func NewPromoteOrderCommand(orderID, organizationID kernel.UUID) (PromoteOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return PromoteOrderCommand{}, err
	}

	return PromoteOrderCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c PromoteOrderCommand) Validate() error {
	return c.guard.Validate(ErrPromoteOrderCommandIsNotConstructed)
}
