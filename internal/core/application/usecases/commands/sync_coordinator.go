package commands

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/store"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"go.uber.org/zap"
)

// SyncCoordinator owns the conversations with the fulfillment system and the ad platform
// that follow a committed transition.
//
// Two modes are used:
//   - inline creation (createRemote) when the caller must learn whether the order reached
//     the fulfillment system; the outcome is written back under a row lock
//   - background reconciliation (reconcile, notifyPurchase) through the task dispatcher;
//     failures are logged and never roll back the local transition
type SyncCoordinator struct {
	uowFactory OrderUoWFactory
	gateways   ports.FulfillmentGatewayFactory
	notifier   ports.ConversionNotifier
	dispatcher ports.TaskDispatcher
	clock      ports.Clock
	logger     *zap.Logger
}

func NewSyncCoordinator(
	uowFactory OrderUoWFactory,
	gateways ports.FulfillmentGatewayFactory,
	notifier ports.ConversionNotifier,
	dispatcher ports.TaskDispatcher,
	clock ports.Clock,
	logger *zap.Logger,
) *SyncCoordinator {
	return &SyncCoordinator{
		uowFactory: uowFactory,
		gateways:   gateways,
		notifier:   notifier,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger.With(zap.String("component", "fulfillment-sync")),
	}
}

// Gateways returns the factory used outside of sweeps.
func (s *SyncCoordinator) Gateways() ports.FulfillmentGatewayFactory {
	return s.gateways
}

// createRemote creates o in the fulfillment system and records the outcome on the locked
// row: the fulfillment id on success, sync_error on failure. The returned order is the
// re-read, updated aggregate. A failed create is returned as an ExternalUnavailableError.
func (s *SyncCoordinator) createRemote(
	ctx context.Context,
	gateways ports.FulfillmentGatewayFactory,
	o *order.Order,
) (*order.Order, error) {
	logger := s.logger.With(zap.String("orderId", o.ID().String()), zap.String("orderNumber", o.OrderNumber()))

	var externalID string
	gw, createErr := gateways.ForOrganization(ctx, o.OrganizationID())
	if createErr == nil {
		externalID, createErr = gw.CreateOrder(ctx, o)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	current, err := repo.GetForUpdate(ctx, o.ID())
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if createErr != nil {
		logger.Warn("fulfillment create failed", zap.Error(createErr))
		if markErr := current.MarkSyncError(now); markErr != nil {
			logger.Warn("order changed before the sync error could be recorded", zap.Error(markErr))
			return current, errs.NewExternalUnavailableError("create order", createErr)
		}
		if err = repo.Update(ctx, current); err != nil {
			return nil, err
		}
		if err = uow.Commit(ctx); err != nil {
			return nil, err
		}
		return current, errs.NewExternalUnavailableError("create order", createErr)
	}

	if err = current.MarkSynced(externalID, now); err != nil {
		logger.Error("order was linked concurrently, remote order left orphaned",
			zap.String("orphanHelpshipOrderId", externalID), zap.Error(err))
		return current, nil
	}
	if err = repo.Update(ctx, current); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	logger.Info("order created in fulfillment", zap.String("helpshipOrderId", externalID))

	if current.Status() == order.Cancelled {
		s.reconcile("cancel", current, func(ctx context.Context, gw ports.FulfillmentGateway, id string) error {
			return gw.Cancel(ctx, id, current.CancelledNote())
		})
	}

	return current, nil
}

// reconcile queues fn for a linked order. Unlinked orders have nothing to reconcile.
func (s *SyncCoordinator) reconcile(
	action string,
	o *order.Order,
	fn func(ctx context.Context, gw ports.FulfillmentGateway, externalID string) error,
) {
	logger := s.logger.With(zap.String("orderId", o.ID().String()), zap.String("action", action))
	if !o.IsLinked() {
		logger.Info("order is not linked to fulfillment, nothing to reconcile")
		return
	}

	organizationID, externalID := o.OrganizationID(), o.HelpshipOrderID()
	err := s.dispatcher.Submit("fulfillment "+action+" "+o.ID().String(), func(ctx context.Context) error {
		gw, err := s.gateways.ForOrganization(ctx, organizationID)
		if err != nil {
			return err
		}
		return fn(ctx, gw, externalID)
	})
	if err != nil {
		logger.Error("fulfillment reconciliation was not queued", zap.Error(err))
	}
}

// notifyPurchase queues the conversion event of a finalized order.
func (s *SyncCoordinator) notifyPurchase(st store.Store, o *order.Order) {
	if !st.AdTracking.Enabled() {
		return
	}
	err := s.dispatcher.Submit("conversion "+o.ID().String(), func(ctx context.Context) error {
		return s.notifier.NotifyPurchase(ctx, st, o)
	})
	if err != nil {
		s.logger.Error("conversion notification was not queued",
			zap.String("orderId", o.ID().String()), zap.Error(err))
	}
}

// completeFinalization runs after a finalization commit: external create inline, then the
// conversion notification. A failed create leaves the order in sync_error and is reported
// through syncFailed only.
func (s *SyncCoordinator) completeFinalization(
	ctx context.Context,
	gateways ports.FulfillmentGatewayFactory,
	st store.Store,
	o *order.Order,
) (*order.Order, bool, error) {
	current, err := s.createRemote(ctx, gateways, o)
	syncFailed := errors.Is(err, errs.ErrExternalUnavailable)
	if err != nil && !syncFailed {
		return nil, false, err
	}
	if current == nil {
		current = o
	}
	s.notifyPurchase(st, current)
	return current, syncFailed, nil
}

// finalizeLocked moves a locked queued order to pending and counts the purchase on its
// customer. It returns false without error when the order already left the queue.
func finalizeLocked(ctx context.Context, uow UoW, o *order.Order, now time.Time, force bool) (bool, error) {
	finalized, err := o.Finalize(now, force)
	if err != nil || !finalized {
		return false, err
	}
	if err = recordPurchase(ctx, uow.CustomerRepository(), o); err != nil {
		return false, err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return false, err
	}
	return true, nil
}

// recordPurchase adds a finalized order to the customer statistics.
func recordPurchase(ctx context.Context, repo ports.CustomerRepository, o *order.Order) error {
	c, err := ensureCustomer(ctx, repo, o.CustomerID(), o.OrganizationID(), o.Delivery())
	if err != nil {
		return err
	}
	if err = c.RecordOrder(o.Total(), o.Delivery().FullName, o.UpdatedAt()); err != nil {
		return err
	}
	return repo.Update(ctx, c)
}

// ensureCustomer returns the locked customer for the delivery phone, creating it with
// newID when the organization has never seen the phone.
func ensureCustomer(
	ctx context.Context,
	repo ports.CustomerRepository,
	newID, organizationID kernel.UUID,
	delivery order.Delivery,
) (*customer.Customer, error) {
	c, err := repo.GetByPhoneForUpdate(ctx, organizationID, delivery.Phone)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	c, err = customer.NewCustomer(newID, organizationID, delivery.Phone, delivery.FullName)
	if err != nil {
		return nil, err
	}
	if err = repo.Add(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// loadOwnedForUpdate locks the order and checks that it belongs to the caller organization.
func loadOwnedForUpdate(
	ctx context.Context,
	repo ports.OrderRepository,
	orderID, organizationID kernel.UUID,
) (*order.Order, error) {
	o, err := repo.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err = checkOwner(o, organizationID); err != nil {
		return nil, err
	}
	return o, nil
}

func loadOwned(ctx context.Context, repo ports.OrderRepository, orderID, organizationID kernel.UUID) (*order.Order, error) {
	o, err := repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err = checkOwner(o, organizationID); err != nil {
		return nil, err
	}
	return o, nil
}

func checkOwner(o *order.Order, organizationID kernel.UUID) error {
	if !o.OrganizationID().IsEqual(organizationID) {
		return errs.ErrForbidden
	}
	return nil
}
