package commands

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CreateOrderResult is the intake outcome.
type CreateOrderResult struct {
	TransitionResult

	// DuplicateCount is the number of earlier orders with the same phone inside the
	// store duplicate window.
	DuplicateCount int
}

// CreateOrderCommandHandler registers a checkout.
//
// The order number comes from the store series in the same transaction. The initial
// status is testing in test mode, queue when the store offers a post-purchase window and
// pending otherwise. Pending orders are finalized right away: the customer statistics are
// updated, the order is created in the fulfillment system inline and the conversion is
// reported in the background.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	catalog    ports.UpsellCatalog
	sync       *SyncCoordinator
	clock      ports.Clock
}

func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	catalog ports.UpsellCatalog,
	sync *SyncCoordinator,
	clock ports.Clock,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
		sync:       sync,
		clock:      clock,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}
	in := cmd.Input()

	upsells, err := h.presaleUpsells(ctx, in.StoreID, in.PresaleUpsellIDs)
	if err != nil {
		return CreateOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	storeRepo := uow.StoreRepository()
	st, err := storeRepo.Get(ctx, in.StoreID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if !st.OrganizationID.IsEqual(in.OrganizationID) {
		return CreateOrderResult{}, errs.ErrForbidden
	}

	orderNumber, err := storeRepo.NextOrderNumber(ctx, in.StoreID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	customerRepo := uow.CustomerRepository()
	c, err := ensureCustomer(ctx, customerRepo, kernel.NewUUID(), in.OrganizationID, in.Delivery)
	if err != nil {
		return CreateOrderResult{}, err
	}

	now := h.clock.Now()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:             in.OrderID,
		OrganizationID: in.OrganizationID,
		StoreID:        in.StoreID,
		CustomerID:     c.ID(),
		OrderNumber:    orderNumber,
		OfferCode:      in.OfferCode,
		LineItem:       in.LineItem,
		Upsells:        upsells,
		Subtotal:       in.Subtotal,
		ShippingCost:   in.ShippingCost,
		Delivery:       in.Delivery,
		TestMode:       in.TestMode,
		OfferWindow:    st.OfferWindow(),
		FromPartialID:  in.FromPartialID,
		Now:            now,
	})
	if err != nil {
		return CreateOrderResult{}, err
	}

	orderRepo := uow.OrderRepository()
	duplicates, err := orderRepo.FindRecentByPhone(ctx, in.OrganizationID, in.Delivery.Phone, now.Add(-st.DuplicateWindow()), nil)
	if err != nil {
		return CreateOrderResult{}, err
	}

	if o.Status() == order.Pending {
		if err = c.RecordOrder(o.Total(), in.Delivery.FullName, now); err != nil {
			return CreateOrderResult{}, err
		}
		if err = customerRepo.Update(ctx, c); err != nil {
			return CreateOrderResult{}, err
		}
	}

	if err = orderRepo.Add(ctx, o); err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	result := CreateOrderResult{
		TransitionResult: TransitionResult{Order: o},
		DuplicateCount:   len(duplicates),
	}
	if o.Status() != order.Pending {
		return result, nil
	}

	current, syncFailed, err := h.sync.completeFinalization(ctx, h.sync.Gateways(), st, o)
	if err != nil {
		return CreateOrderResult{}, err
	}
	result.Order = current
	result.SyncFailed = syncFailed
	return result, nil
}

func (h CreateOrderCommandHandler) presaleUpsells(ctx context.Context, storeID kernel.UUID, ids []kernel.UUID) ([]order.Upsell, error) {
	upsells := make([]order.Upsell, 0, len(ids))
	for _, id := range ids {
		offer, err := h.catalog.Get(ctx, storeID, id)
		if err != nil {
			return nil, err
		}
		if !offer.Active || offer.Type != order.Presale {
			return nil, errs.NewValueIsInvalidErrorWithCause("presaleUpsellIds",
				fmt.Errorf("upsell %s is not an active presale offer", id))
		}
		u, err := offer.ToUpsell()
		if err != nil {
			return nil, err
		}
		upsells = append(upsells, u)
	}
	return upsells, nil
}
