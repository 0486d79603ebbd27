package commands

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const DefaultSweepBatchSize = 200

var ErrExpireQueuedOrdersCommandIsNotConstructed = errors.New(
	"ExpireQueuedOrdersCommand must be created via NewExpireQueuedOrdersCommand constructor",
)

// ExpireQueuedOrdersCommand finalizes queued orders whose offer window has ended.
type ExpireQueuedOrdersCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewExpireQueuedOrdersCommand(batchSize int) (ExpireQueuedOrdersCommand, error) {
	size, err := validBatchSize(batchSize)
	if err != nil {
		return ExpireQueuedOrdersCommand{}, err
	}
	return ExpireQueuedOrdersCommand{batchSize: size, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireQueuedOrdersCommand) Validate() error {
	return c.guard.Validate(ErrExpireQueuedOrdersCommandIsNotConstructed)
}

func (c ExpireQueuedOrdersCommand) BatchSize() int {
	return c.batchSize
}

// validBatchSize maps zero to DefaultSweepBatchSize.
func validBatchSize(batchSize int) (int, error) {
	switch {
	case batchSize == 0:
		return DefaultSweepBatchSize, nil
	case batchSize < 0 || batchSize > 1000:
		return 0, errs.NewValueIsOutOfRangeErrorWithCause("batchSize", batchSize, 1, 1000,
			fmt.Errorf("batch size must be between 1 and 1000"))
	default:
		return batchSize, nil
	}
}
