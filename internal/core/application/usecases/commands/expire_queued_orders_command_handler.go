package commands

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"go.uber.org/zap"
)

// ExpireQueuedOrdersCommandHandler is the queue-expiry sweep. Each expired order is
// finalized with force through the same path as a customer response, so an order
// finalized concurrently is a no-op here.
type ExpireQueuedOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	finalizer  FinalizeOrderCommandHandler
	sweeper    sweeper
	clock      ports.Clock
	logger     *zap.Logger
}

func NewExpireQueuedOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	finalizer FinalizeOrderCommandHandler,
	locker ports.SweepLocker,
	lockTTL time.Duration,
	clock ports.Clock,
	logger *zap.Logger,
) ExpireQueuedOrdersCommandHandler {
	return ExpireQueuedOrdersCommandHandler{
		uowFactory: uowFactory,
		finalizer:  finalizer,
		sweeper:    newSweeper("queue-expiry", locker, lockTTL, logger),
		clock:      clock,
		logger:     logger,
	}
}

func (h ExpireQueuedOrdersCommandHandler) Handle(ctx context.Context, cmd ExpireQueuedOrdersCommand) (SweepSummary, error) {
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

		return uow.OrderRepository().FindExpiredQueued(ctx, h.clock.Now(), cmd.BatchSize())
	}

	process := func(ctx context.Context, gateways ports.FulfillmentGatewayFactory, o *order.Order) error {
		result, err := h.finalizer.finalize(ctx, gateways, o.ID(), nil, true, nil)
		if err != nil {
			return err
		}
		if result.SyncFailed {
			h.logger.Warn("expired order finalized but not created in fulfillment",
				zap.String("orderId", o.ID().String()))
		}
		return nil
	}

	return h.sweeper.run(ctx, h.finalizer.sync.Gateways(), load, process)
}
