package commands

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"go.uber.org/zap"
)

// HoldOrderCommandHandler holds the remote order first and commits the local hold only
// after the fulfillment system reports the order on hold. Any other outcome leaves the
// order untouched and returns errs.ErrSyncUnconfirmed.
type HoldOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
	clock      ports.Clock
	logger     *zap.Logger
}

func NewHoldOrderCommandHandler(
	uowFactory OrderUoWFactory,
	sync *SyncCoordinator,
	clock ports.Clock,
	logger *zap.Logger,
) HoldOrderCommandHandler {
	return HoldOrderCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		clock:      clock,
		logger:     logger.With(zap.String("component", "hold-order")),
	}
}

func (h HoldOrderCommandHandler) Handle(ctx context.Context, cmd HoldOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	o, err := h.load(ctx, cmd)
	if err != nil {
		return TransitionResult{}, err
	}

	if err = o.CheckHold(); err != nil {
		return TransitionResult{}, err
	}

	if err = h.holdRemote(ctx, o, cmd.Note()); err != nil {
		return TransitionResult{}, err
	}

	held, err := h.commitHold(ctx, cmd)
	if err != nil {
		h.logger.Warn("remote hold confirmed but local hold failed, releasing remote hold",
			zap.String("orderId", o.ID().String()), zap.Error(err))
		h.sync.reconcile("release hold", o, func(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error {
			return gw.SetUnhold(ctx, externalID)
		})
		return TransitionResult{}, err
	}

	return TransitionResult{Order: held}, nil
}

func (h HoldOrderCommandHandler) load(ctx context.Context, cmd HoldOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return loadOwned(ctx, uow.OrderRepository(), cmd.OrderID(), cmd.OrganizationID())
}

func (h HoldOrderCommandHandler) holdRemote(ctx context.Context, o *order.Order, note string) error {
	gw, err := h.sync.Gateways().ForOrganization(ctx, o.OrganizationID())
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrSyncUnconfirmed, err)
	}

	if err = gw.SetHold(ctx, o.HelpshipOrderID(), note); err != nil {
		return fmt.Errorf("%w: hold request failed: %w", errs.ErrSyncUnconfirmed, err)
	}

	status, err := gw.GetStatus(ctx, o.HelpshipOrderID())
	if err != nil {
		return fmt.Errorf("%w: hold could not be verified: %w", errs.ErrSyncUnconfirmed, err)
	}
	if status != ports.RemoteOnHold {
		return fmt.Errorf("%w: fulfillment reports order %s as %s", errs.ErrSyncUnconfirmed, o.OrderNumber(), status)
	}

	return nil
}

func (h HoldOrderCommandHandler) commitHold(ctx context.Context, cmd HoldOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := loadOwnedForUpdate(ctx, orderRepo, cmd.OrderID(), cmd.OrganizationID())
	if err != nil {
		return nil, err
	}

	if err = o.Hold(cmd.Note(), h.clock.Now()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
