// Package queries contains read-only use cases. Handlers read straight from the database
// and return flat views; they never load or lock aggregates.
package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery reads one order on behalf of an organization.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID, organizationID)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID        kernel.UUID
	organizationID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID, organizationID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(orderID.Validate(), organizationID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID:        orderID,
		organizationID: organizationID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderQuery) OrganizationID() kernel.UUID {
	return q.organizationID
}

// OrderView is the read model of an order. Statuses are their persisted names.
type OrderView struct {
	ID                  kernel.UUID
	OrganizationID      kernel.UUID
	StoreID             kernel.UUID
	CustomerID          kernel.UUID
	OrderNumber         string
	OfferCode           string
	ProductName         string
	SKU                 string
	Quantity            int
	Upsells             []UpsellView
	Subtotal            decimal.Decimal
	ShippingCost        decimal.Decimal
	Total               decimal.Decimal
	Delivery            DeliveryView
	Status              string
	HoldFromStatus      *string
	CancelledFromStatus *string
	CancelledNote       string
	CancellerName       string
	OrderNote           string
	HelpshipOrderID     *string
	QueueExpiresAt      *time.Time
	ScheduledDate       *time.Time
	PromotedFromTesting bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type UpsellView struct {
	UpsellID string          `json:"upsellId"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type"`
}

type DeliveryView struct {
	FullName   string
	Phone      string
	County     string
	City       string
	Address    string
	PostalCode string
}
