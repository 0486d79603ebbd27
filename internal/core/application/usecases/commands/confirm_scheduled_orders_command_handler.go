package commands

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"go.uber.org/zap"
)

// ConfirmScheduledOrdersCommandHandler is the daily scheduled-confirm sweep.
//
// For a linked order the remote hold placed by scheduling is released first; when the
// release fails the order stays scheduled and the item is reported as failed. A remote
// status other than on hold or pending is logged and the order is still confirmed.
type ConfirmScheduledOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	sync       *SyncCoordinator
	sweeper    sweeper
	clock      ports.Clock
	logger     *zap.Logger
}

func NewConfirmScheduledOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	sync *SyncCoordinator,
	locker ports.SweepLocker,
	lockTTL time.Duration,
	clock ports.Clock,
	logger *zap.Logger,
) ConfirmScheduledOrdersCommandHandler {
	return ConfirmScheduledOrdersCommandHandler{
		uowFactory: uowFactory,
		sync:       sync,
		sweeper:    newSweeper("scheduled-confirm", locker, lockTTL, logger),
		clock:      clock,
		logger:     logger.With(zap.String("component", "scheduled-confirm")),
	}
}

func (h ConfirmScheduledOrdersCommandHandler) Handle(ctx context.Context, cmd ConfirmScheduledOrdersCommand) (SweepSummary, error) {
	if err := cmd.Validate(); err != nil {
		return SweepSummary{}, err
	}

	load := func(ctx context.Context) ([]*order.Order, error) {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		return uow.OrderRepository().FindScheduledDue(ctx, h.clock.Now(), cmd.BatchSize())
	}

	return h.sweeper.run(ctx, h.sync.Gateways(), load, h.confirm)
}

func (h ConfirmScheduledOrdersCommandHandler) confirm(
	ctx context.Context,
	gateways ports.FulfillmentGatewayFactory,
	o *order.Order,
) error {
	if o.IsLinked() {
		if err := h.releaseHold(ctx, gateways, o); err != nil {
			return err
		}
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	current, err := orderRepo.GetForUpdate(ctx, o.ID())
	if err != nil {
		return err
	}
	if current.Status() != order.Scheduled {
		h.logger.Info("order left scheduled before confirmation",
			zap.String("orderId", o.ID().String()), zap.Stringer("status", current.Status()))
		return nil
	}

	if err = current.ConfirmScheduled(h.clock.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, current); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h ConfirmScheduledOrdersCommandHandler) releaseHold(
	ctx context.Context,
	gateways ports.FulfillmentGatewayFactory,
	o *order.Order,
) error {
	gw, err := gateways.ForOrganization(ctx, o.OrganizationID())
	if err != nil {
		return err
	}

	status, err := gw.GetStatus(ctx, o.HelpshipOrderID())
	if err != nil {
		return err
	}

	switch status {
	case ports.RemoteOnHold:
		if err = gw.SetUnhold(ctx, o.HelpshipOrderID()); err != nil {
			return fmt.Errorf("release remote hold: %w", err)
		}
	case ports.RemotePending:
	default:
		h.logger.Warn("unexpected fulfillment status for scheduled order, confirming anyway",
			zap.String("orderId", o.ID().String()), zap.String("remoteStatus", string(status)))
	}

	return nil
}
