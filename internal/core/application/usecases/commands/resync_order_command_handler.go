package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// ResyncOrderCommandHandler retries the fulfillment create of a sync_error or unlinked
// pending order. The outcome is reported like Promote.
type ResyncOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
}

func NewResyncOrderCommandHandler(uowFactory OrderUoWFactory, sync *SyncCoordinator) ResyncOrderCommandHandler {
	return ResyncOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
	}
}

func (h ResyncOrderCommandHandler) Handle(ctx context.Context, cmd ResyncOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o, err := h.checkResync(ctx, cmd)
	if err != nil {
		return TransitionResult{}, err
	}

	current, err := h.sync.createRemote(ctx, h.sync.Gateways(), o)
	if current == nil {
		current = o
	}
	if err != nil {
		return TransitionResult{Order: current, SyncFailed: true}, err
	}

	return TransitionResult{Order: current}, nil
}

func (h ResyncOrderCommandHandler) checkResync(ctx context.Context, cmd ResyncOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := loadOwnedForUpdate(ctx, uow.OrderRepository(), cmd.OrderID(), cmd.OrganizationID())
	if err != nil {
		return nil, err
	}

	if err = o.CheckResync(); err != nil {
		return nil, err
	}

	return o, nil
}
