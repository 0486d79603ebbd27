package commands

import (
	"context"
	"time"

	"orderflow/internal/core/ports"
)

// ScheduleOrderCommandHandler moves a pending order to scheduled and holds the remote
// order in the background until the scheduled-confirm sweep releases it.
type ScheduleOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewScheduleOrderCommandHandler(uowFactory OrderUoWFactory, sync *SyncCoordinator, clock ports.Clock) ScheduleOrderCommandHandler {
	return ScheduleOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
	}
}

func (h ScheduleOrderCommandHandler) Handle(ctx context.Context, cmd ScheduleOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := loadOwnedForUpdate(ctx, orderRepo, cmd.OrderID(), cmd.OrganizationID())
	if err != nil {
		return TransitionResult{}, err
	}

	if err = o.Schedule(cmd.Date(), h.clock.Now()); err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	note := "scheduled " + o.ScheduledDate().Format(time.DateOnly)
	h.sync.reconcile("schedule", o, func(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error {
		return gw.SetHold(ctx, externalID, note)
	})

	return TransitionResult{Order: o}, nil
}
