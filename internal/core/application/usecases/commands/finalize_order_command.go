package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrFinalizeOrderCommandIsNotConstructed = errors.New(
	"FinalizeOrderCommand must be created via NewFinalizeOrderCommand constructor",
)

// FinalizeOrderCommand closes the post-purchase window of a queued order without an upsell.
type FinalizeOrderCommand struct {
	orderTarget

	guard guard.ConstructorGuard
}

func NewFinalizeOrderCommand(orderID, organizationID kernel.UUID) (FinalizeOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return FinalizeOrderCommand{}, err
	}

	return FinalizeOrderCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c FinalizeOrderCommand) Validate() error {
	return c.guard.Validate(ErrFinalizeOrderCommandIsNotConstructed)
}
