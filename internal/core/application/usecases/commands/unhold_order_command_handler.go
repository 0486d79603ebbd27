package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// UnholdOrderCommandHandler releases the hold locally first and in the fulfillment system
// in the background.
type UnholdOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewUnholdOrderCommandHandler(uowFactory OrderUoWFactory, sync *SyncCoordinator, clock ports.Clock) UnholdOrderCommandHandler {
	return UnholdOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
	}
}

func (h UnholdOrderCommandHandler) Handle(ctx context.Context, cmd UnholdOrderCommand) (TransitionResult, error) {
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

	if err = o.Unhold(h.clock.Now()); err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	h.sync.reconcile("unhold", o, func(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error {
		return gw.SetUnhold(ctx, externalID)
	})

	return TransitionResult{Order: o}, nil
}
