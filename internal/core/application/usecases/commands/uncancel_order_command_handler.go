package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// UncancelOrderCommandHandler restores the order locally, then unarchives the remote order
// in the background. Orders restored to hold or scheduled are held again remotely.
type UncancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewUncancelOrderCommandHandler(uowFactory OrderUoWFactory, sync *SyncCoordinator, clock ports.Clock) UncancelOrderCommandHandler {
	return UncancelOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
	}
}

func (h UncancelOrderCommandHandler) Handle(ctx context.Context, cmd UncancelOrderCommand) (TransitionResult, error) {
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

	if err = o.Uncancel(h.clock.Now()); err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	rehold := o.Status() == order.Hold || o.Status() == order.Scheduled
	note := o.OrderNote()
	h.sync.reconcile("uncancel", o, func(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error {
		if err := gw.Uncancel(ctx, externalID); err != nil {
			return err
		}
		if rehold {
			return gw.SetHold(ctx, externalID, note)
		}
		return nil
	})

	return TransitionResult{Order: o}, nil
}
