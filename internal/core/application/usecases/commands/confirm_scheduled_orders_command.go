package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrConfirmScheduledOrdersCommandIsNotConstructed = errors.New(
	"ConfirmScheduledOrdersCommand must be created via NewConfirmScheduledOrdersCommand constructor",
)

// ConfirmScheduledOrdersCommand confirms scheduled orders whose date has come.
type ConfirmScheduledOrdersCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewConfirmScheduledOrdersCommand(batchSize int) (ConfirmScheduledOrdersCommand, error) {
	size, err := validBatchSize(batchSize)
	if err != nil {
		return ConfirmScheduledOrdersCommand{}, err
	}
	return ConfirmScheduledOrdersCommand{batchSize: size, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmScheduledOrdersCommand) Validate() error {
	return c.guard.Validate(ErrConfirmScheduledOrdersCommandIsNotConstructed)
}

func (c ConfirmScheduledOrdersCommand) BatchSize() int {
	return c.batchSize
}
