package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// FinalizeOrderCommandHandler moves a queued order to pending. The same path serves the
// customer declining the offer, the accepted upsell and the expiry sweep.
//
// Finalizing an order that already left the queue is a successful no-op, so a customer
// response racing the sweeper finalizes the order exactly once.
type FinalizeOrderCommandHandler struct {
	uowFactory UoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewFinalizeOrderCommandHandler(uowFactory UoWFactory, sync *SyncCoordinator, clock ports.Clock) FinalizeOrderCommandHandler {
	return FinalizeOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
	}
}

// Handle finalizes on behalf of the customer. An expired window is rejected with
// errs.ErrOfferExpired; the expiry sweep finalizes such orders.
func (h FinalizeOrderCommandHandler) Handle(ctx context.Context, cmd FinalizeOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	organizationID := cmd.OrganizationID()
	return h.finalize(ctx, h.sync.Gateways(), cmd.OrderID(), &organizationID, false, nil)
}

// finalize locks the order, applies mutate when given, finalizes, commits and completes the
// finalization. A nil organizationID skips the ownership check (sweeps).
func (h FinalizeOrderCommandHandler) finalize(
	ctx context.Context,
	gateways ports.FulfillmentGatewayFactory,
	orderID kernel.UUID,
	organizationID *kernel.UUID,
	force bool,
	mutate func(ctx context.Context, o *order.Order, now time.Time) error,
) (TransitionResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return TransitionResult{}, err
	}
	if organizationID != nil {
		if err = checkOwner(o, *organizationID); err != nil {
			return TransitionResult{}, err
		}
	}

	now := h.clock.Now()
	if mutate != nil {
		if err = mutate(ctx, o, now); err != nil {
			return TransitionResult{}, err
		}
	}

	finalized, err := finalizeLocked(ctx, uow, o, now, force)
	if err != nil {
		return TransitionResult{}, err
	}
	if !finalized {
		return TransitionResult{Order: o, NoOp: true}, nil
	}

	st, err := uow.StoreRepository().Get(ctx, o.StoreID())
	if err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	current, syncFailed, err := h.sync.completeFinalization(ctx, gateways, st, o)
	if err != nil {
		return TransitionResult{}, err
	}

	return TransitionResult{Order: current, SyncFailed: syncFailed}, nil
}
