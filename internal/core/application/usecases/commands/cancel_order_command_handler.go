package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// CancelOrderCommandHandler cancels locally first and archives the remote order in the
// background. Cancelling a cancelled order is a successful no-op.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory, sync *SyncCoordinator, clock ports.Clock) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
	}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (TransitionResult, error) {
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

	err = o.Cancel(cmd.Note(), cmd.CancellerName(), h.clock.Now())
	if errors.Is(err, order.ErrAlreadyCancelled) {
		return TransitionResult{Order: o, NoOp: true}, nil
	}
	if err != nil {
		return TransitionResult{}, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	note := o.CancelledNote()
	h.sync.reconcile("cancel", o, func(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error {
		return gw.Cancel(ctx, externalID, note)
	})

	return TransitionResult{Order: o}, nil
}
