package commands

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrScheduleOrderCommandIsNotConstructed = errors.New(
	"ScheduleOrderCommand must be created via NewScheduleOrderCommand constructor",
)

// ScheduleOrderCommand defers confirmation of a pending order to a calendar day.
type ScheduleOrderCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	date time.Time

	guard guard.ConstructorGuard
}

func NewScheduleOrderCommand(orderID, organizationID kernel.UUID, date time.Time) (ScheduleOrderCommand, error) {
	target, err := newOrderTarget(orderID, organizationID)
	if err != nil {
		return ScheduleOrderCommand{}, err
	}
	if date.IsZero() {
		return ScheduleOrderCommand{}, errs.NewValueIsRequiredError("scheduledDate")
	}

	return ScheduleOrderCommand{
		orderTarget: target,
		date:        date,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ScheduleOrderCommand) Validate() error {
	return c.guard.Validate(ErrScheduleOrderCommandIsNotConstructed)
}

func (c ScheduleOrderCommand) Date() time.Time {
	return c.date
}
