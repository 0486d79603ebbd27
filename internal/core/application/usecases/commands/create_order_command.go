package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderInput is the checkout payload accepted by NewCreateOrderCommand.
type CreateOrderInput struct {
	OrderID          kernel.UUID
	OrganizationID   kernel.UUID
	StoreID          kernel.UUID
	OfferCode        string
	LineItem         order.LineItem
	PresaleUpsellIDs []kernel.UUID
	Subtotal         decimal.Decimal
	ShippingCost     decimal.Decimal
	Delivery         order.Delivery
	TestMode         bool
	FromPartialID    *kernel.UUID
}

// CreateOrderCommand represents a checkout submitted to a store.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(CreateOrderInput{
//	    OrderID:        kernel.NewUUID(),
//	    OrganizationID: organizationID,
//	    StoreID:        storeID,
//	    LineItem:       item,
//	    Subtotal:       decimal.RequireFromString("100.00"),
//	    Delivery:       delivery,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	input CreateOrderInput

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(in CreateOrderInput) (CreateOrderCommand, error) {
	errList := []error{
		in.OrderID.Validate(),
		in.OrganizationID.Validate(),
		in.StoreID.Validate(),
		in.LineItem.Validate(),
		in.Delivery.Validate(),
	}
	for _, id := range in.PresaleUpsellIDs {
		errList = append(errList, id.Validate())
	}
	if _, err := kernel.NewAmount("subtotal", in.Subtotal); err != nil {
		errList = append(errList, err)
	}
	if _, err := kernel.NewAmount("shippingCost", in.ShippingCost); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return CreateOrderCommand{}, err
	}

	return CreateOrderCommand{
		input: in,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// Input returns the validated checkout payload.
func (c CreateOrderCommand) Input() CreateOrderInput {
	return c.input
}
