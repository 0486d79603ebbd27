package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// ConfirmOrderCommandHandler confirms locally first. The background reconciliation pushes
// delivery corrections to the fulfillment system and releases a remote hold left by
// scheduling.
type ConfirmOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewConfirmOrderCommandHandler(uowFactory OrderUoWFactory, sync *SyncCoordinator, clock ports.Clock) ConfirmOrderCommandHandler {
	return ConfirmOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
	}
}

func (h ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) (TransitionResult, error) {
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

	if err = o.Confirm(cmd.Patch(), h.clock.Now()); err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	patched := !cmd.Patch().IsEmpty()
	h.sync.reconcile("confirm", o, func(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error {
		if patched {
			if err := gw.UpdateOrder(ctx, externalID, o); err != nil {
				return err
			}
		}
		return releaseRemoteHold(ctx, gw, externalID)
	})

	return TransitionResult{Order: o}, nil
}

// releaseRemoteHold unholds the remote order when it is on hold.
func releaseRemoteHold(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error {
	status, err := gw.GetStatus(ctx, externalID)
	if err != nil {
		return err
	}
	if status != ports.RemoteOnHold {
		return nil
	}
	return gw.SetUnhold(ctx, externalID)
}
