package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrHoldOrderCommandIsNotConstructed = errors.New(
	"HoldOrderCommand must be created via NewHoldOrderCommand constructor",
)

// HoldOrderCommand pauses a pending order. The note is printed on the shipping label and
// must fit two lines of twenty characters.
type HoldOrderCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	note string

	guard guard.ConstructorGuard
}

func NewHoldOrderCommand(orderID, organizationID kernel.UUID, note string) (HoldOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return HoldOrderCommand{}, err
	}
	orderNote, err := order.NewOrderNote(note)
	if err != nil {
		return HoldOrderCommand{}, err
	}

	return HoldOrderCommand{
		orderTarget: target,
		note:        orderNote,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c HoldOrderCommand) Validate() error {
	return c.guard.Validate(ErrHoldOrderCommandIsNotConstructed)
}

func (c HoldOrderCommand) Note() string {
	return c.note
}
