package helpship

import (
	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type orderPayload struct {
	ExternalReference string          `json:"externalReference"`
	OrderNumber       string          `json:"orderNumber"`
	OfferCode         string          `json:"offerCode,omitempty"`
	Customer          customerPayload `json:"customer"`
	ShippingAddress   addressPayload  `json:"shippingAddress"`
	Items             []itemPayload   `json:"items"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	Total             decimal.Decimal `json:"total"`
	Note              string          `json:"note,omitempty"`
}

type customerPayload struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type addressPayload struct {
	County     string `json:"county"`
	City       string `json:"city"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode,omitempty"`
}

type itemPayload struct {
	Name     string           `json:"name"`
	SKU      string           `json:"sku,omitempty"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

type orderStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type notePayload struct {
	Note string `json:"note,omitempty"`
}

// newOrderPayload maps an order to the fulfillment representation. The main line item is
// priced at the order subtotal.
func newOrderPayload(o *order.Order) orderPayload {
	d := o.Delivery()
	item := o.LineItem()
	subtotal := o.Subtotal()

	items := make([]itemPayload, 0, 1+len(o.Upsells()))
	items = append(items, itemPayload{
		Name:     item.ProductName,
		SKU:      item.SKU,
		Quantity: item.Quantity,
		Price:    &subtotal,
	})
	for _, u := range o.Upsells() {
		price := u.Price
		items = append(items, itemPayload{
			Name:     u.Title,
			Quantity: u.Quantity,
			Price:    &price,
		})
	}

	return orderPayload{
		ExternalReference: o.ID().String(),
		OrderNumber:       o.OrderNumber(),
		OfferCode:         o.OfferCode(),
		Customer: customerPayload{
			FullName: d.FullName,
			Phone:    d.Phone.String(),
		},
		ShippingAddress: addressPayload{
			County:     d.County,
			City:       d.City,
			Address:    d.Address,
			PostalCode: d.PostalCode,
		},
		Items:        items,
		ShippingCost: o.ShippingCost(),
		Total:        o.Total(),
		Note:         o.OrderNote(),
	}
}
