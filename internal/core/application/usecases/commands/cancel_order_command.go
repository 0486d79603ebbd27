package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand archives an order. The note is sanitized and the canceller is the
// operator name shown in the order history.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	note          string
	cancellerName string

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID, organizationID kernel.UUID, note, cancellerName string) (CancelOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return CancelOrderCommand{}, err
	}
	cleanNote, err := order.NewCancelNote(note)
	if err != nil {
		return CancelOrderCommand{}, err
	}

	return CancelOrderCommand{
		orderTarget:   target,
		note:          cleanNote,
		cancellerName: strings.TrimSpace(cancellerName),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Note() string {
	return c.note
}

func (c CancelOrderCommand) CancellerName() string {
	return c.cancellerName
}
