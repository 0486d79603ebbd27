package http

import (
	"errors"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/generated/servers"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

func createOrderInput(organizationID kernel.UUID, body servers.CreateOrderRequest) (commands.CreateOrderInput, error) {
	orderID := kernel.NewUUID()
	if body.Id != nil {
		orderID = uuidFromAPI(*body.Id)
	}

	item, itemErr := order.NewLineItem(body.ProductName, deref(body.Sku), body.Quantity)
	subtotal, subtotalErr := kernel.ParseAmount("subtotal", body.Subtotal)
	shipping := decimal.Zero
	var shippingErr error
	if body.ShippingCost != nil {
		shipping, shippingErr = kernel.ParseAmount("shippingCost", *body.ShippingCost)
	}
	delivery, deliveryErr := deliveryFromAPI(body.Delivery)
	if err := errors.Join(itemErr, subtotalErr, shippingErr, deliveryErr); err != nil {
		return commands.CreateOrderInput{}, err
	}

	var upsellIDs []kernel.UUID
	if body.PresaleUpsellIds != nil {
		for _, id := range *body.PresaleUpsellIds {
			upsellIDs = append(upsellIDs, uuidFromAPI(id))
		}
	}

	var fromPartialID *kernel.UUID
	if body.FromPartialId != nil {
		id := uuidFromAPI(*body.FromPartialId)
		fromPartialID = &id
	}

	return commands.CreateOrderInput{
		OrderID:          orderID,
		OrganizationID:   organizationID,
		StoreID:          uuidFromAPI(body.StoreId),
		OfferCode:        deref(body.OfferCode),
		LineItem:         item,
		PresaleUpsellIDs: upsellIDs,
		Subtotal:         subtotal,
		ShippingCost:     shipping,
		Delivery:         delivery,
		TestMode:         deref(body.TestMode),
		FromPartialID:    fromPartialID,
	}, nil
}

func deliveryFromAPI(d servers.Delivery) (order.Delivery, error) {
	phone, err := kernel.NewPhone(d.Phone)
	if err != nil {
		return order.Delivery{}, err
	}
	return order.NewDelivery(d.FullName, phone, d.County, d.City, d.Address, deref(d.PostalCode))
}

func deliveryPatchFromAPI(p *servers.DeliveryPatch) (*order.DeliveryPatch, error) {
	if p == nil {
		return nil, nil
	}

	patch := &order.DeliveryPatch{
		FullName:   p.FullName,
		County:     p.County,
		City:       p.City,
		Address:    p.Address,
		PostalCode: p.PostalCode,
	}
	if p.Phone != nil {
		phone, err := kernel.NewPhone(*p.Phone)
		if err != nil {
			return nil, err
		}
		patch.Phone = &phone
	}
	return patch, nil
}

func orderFromDomain(o *order.Order) servers.Order {
	if o == nil {
		return servers.Order{}
	}

	upsells := make([]servers.Upsell, 0, len(o.Upsells()))
	for _, u := range o.Upsells() {
		upsells = append(upsells, servers.Upsell{
			UpsellId: openapi_types.UUID(u.UpsellID.Bytes()),
			Title:    u.Title,
			Quantity: u.Quantity,
			Price:    u.Price.StringFixed(2),
			Type:     servers.UpsellType(u.Type),
		})
	}

	d := o.Delivery()
	item := o.LineItem()
	return servers.Order{
		Id:                  openapi_types.UUID(o.ID().Bytes()),
		OrganizationId:      openapi_types.UUID(o.OrganizationID().Bytes()),
		StoreId:             openapi_types.UUID(o.StoreID().Bytes()),
		CustomerId:          openapi_types.UUID(o.CustomerID().Bytes()),
		OrderNumber:         o.OrderNumber(),
		OfferCode:           optional(o.OfferCode()),
		ProductName:         item.ProductName,
		Sku:                 optional(item.SKU),
		Quantity:            item.Quantity,
		Upsells:             upsells,
		Subtotal:            o.Subtotal().StringFixed(2),
		ShippingCost:        o.ShippingCost().StringFixed(2),
		Total:               o.Total().StringFixed(2),
		Delivery:            deliveryToAPI(d.FullName, d.Phone.String(), d.County, d.City, d.Address, d.PostalCode),
		Status:              servers.OrderStatus(o.Status().String()),
		HoldFromStatus:      statusToAPI(o.HoldFromStatus()),
		CancelledFromStatus: statusToAPI(o.CancelledFromStatus()),
		CancelledNote:       optional(o.CancelledNote()),
		CancellerName:       optional(o.CancellerName()),
		OrderNote:           optional(o.OrderNote()),
		HelpshipOrderId:     optional(o.HelpshipOrderID()),
		QueueExpiresAt:      o.QueueExpiresAt(),
		ScheduledDate:       dateToAPI(o.ScheduledDate()),
		PromotedFromTesting: o.PromotedFromTesting(),
		CreatedAt:           o.CreatedAt(),
		UpdatedAt:           o.UpdatedAt(),
	}
}

func orderFromView(v queries.OrderView) servers.Order {
	upsells := make([]servers.Upsell, 0, len(v.Upsells))
	for _, u := range v.Upsells {
		id, _ := kernel.UUIDFromString(u.UpsellID)
		upsells = append(upsells, servers.Upsell{
			UpsellId: openapi_types.UUID(id.Bytes()),
			Title:    u.Title,
			Quantity: u.Quantity,
			Price:    u.Price.StringFixed(2),
			Type:     servers.UpsellType(u.Type),
		})
	}

	d := v.Delivery
	return servers.Order{
		Id:                  openapi_types.UUID(v.ID.Bytes()),
		OrganizationId:      openapi_types.UUID(v.OrganizationID.Bytes()),
		StoreId:             openapi_types.UUID(v.StoreID.Bytes()),
		CustomerId:          openapi_types.UUID(v.CustomerID.Bytes()),
		OrderNumber:         v.OrderNumber,
		OfferCode:           optional(v.OfferCode),
		ProductName:         v.ProductName,
		Sku:                 optional(v.SKU),
		Quantity:            v.Quantity,
		Upsells:             upsells,
		Subtotal:            v.Subtotal.StringFixed(2),
		ShippingCost:        v.ShippingCost.StringFixed(2),
		Total:               v.Total.StringFixed(2),
		Delivery:            deliveryToAPI(d.FullName, d.Phone, d.County, d.City, d.Address, d.PostalCode),
		Status:              servers.OrderStatus(v.Status),
		HoldFromStatus:      (*servers.OrderStatus)(v.HoldFromStatus),
		CancelledFromStatus: (*servers.OrderStatus)(v.CancelledFromStatus),
		CancelledNote:       optional(v.CancelledNote),
		CancellerName:       optional(v.CancellerName),
		OrderNote:           optional(v.OrderNote),
		HelpshipOrderId:     v.HelpshipOrderID,
		QueueExpiresAt:      v.QueueExpiresAt,
		ScheduledDate:       dateToAPI(v.ScheduledDate),
		PromotedFromTesting: v.PromotedFromTesting,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func duplicatesFromView(r queries.FindDuplicateOrdersQueryResponse) servers.DuplicatesResponse {
	orders := make([]servers.DuplicateOrder, 0, len(r.Orders))
	for _, o := range r.Orders {
		orders = append(orders, servers.DuplicateOrder{
			Id:          openapi_types.UUID(o.ID.Bytes()),
			OrderNumber: o.OrderNumber,
			Status:      servers.OrderStatus(o.Status),
			Total:       o.Total.StringFixed(2),
			FullName:    o.FullName,
			CreatedAt:   o.CreatedAt,
		})
	}
	return servers.DuplicatesResponse{
		Phone:      r.Phone,
		WindowDays: r.WindowDays,
		Count:      len(orders),
		Orders:     orders,
	}
}

func cronResponse(name string, summary commands.SweepSummary) servers.CronResponse {
	errs := make([]servers.CronError, 0, len(summary.Errors))
	for _, e := range summary.Errors {
		errs = append(errs, servers.CronError{OrderId: e.OrderID, Error: e.Error})
	}

	message := name + " completed"
	var skipped *bool
	if summary.Skipped {
		message = name + " skipped, another run holds the lock"
		skipped = &summary.Skipped
	}

	return servers.CronResponse{
		Success: true,
		Message: message,
		Skipped: skipped,
		Results: servers.CronResults{
			Total:   summary.Total,
			Success: summary.Success,
			Failed:  summary.Failed,
			Errors:  errs,
		},
	}
}

func deliveryToAPI(fullName, phone, county, city, address, postalCode string) servers.Delivery {
	return servers.Delivery{
		FullName:   fullName,
		Phone:      phone,
		County:     county,
		City:       city,
		Address:    address,
		PostalCode: optional(postalCode),
	}
}

func statusToAPI(s *order.Status) *servers.OrderStatus {
	if s == nil {
		return nil
	}
	v := servers.OrderStatus(s.String())
	return &v
}

func dateToAPI(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
