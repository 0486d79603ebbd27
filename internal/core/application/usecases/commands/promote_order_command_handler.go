package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// PromoteOrderCommandHandler turns a test order into a live one: testing -> pending, then
// the same inline fulfillment create as intake. A failed create leaves the order in
// sync_error and is returned as an ExternalUnavailableError together with the result.
type PromoteOrderCommandHandler struct {
	uowFactory UoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewPromoteOrderCommandHandler(uowFactory UoWFactory, sync *SyncCoordinator, clock ports.Clock) PromoteOrderCommandHandler {
	return PromoteOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
	}
}

func (h PromoteOrderCommandHandler) Handle(ctx context.Context, cmd PromoteOrderCommand) (TransitionResult, error) {
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

	if err = o.Promote(h.clock.Now()); err != nil {
		return TransitionResult{}, err
	}

	if err = recordPurchase(ctx, uow.CustomerRepository(), o); err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	st, err := uow.StoreRepository().Get(ctx, o.StoreID())
	if err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	current, err := h.sync.createRemote(ctx, h.sync.Gateways(), o)
	if current == nil {
		current = o
	}
	if err != nil {
		return TransitionResult{Order: current, SyncFailed: true}, err
	}

	h.sync.notifyPurchase(st, current)
	return TransitionResult{Order: current}, nil
}
