package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrFindDuplicateOrdersQueryIsNotConstructed = errors.New(
		"FindDuplicateOrdersQuery must be created via NewFindDuplicateOrdersQuery constructor",
	)
)

// FindDuplicateOrdersQuery lists the other orders placed with the phone of an order inside
// its store's duplicate window. Statuses narrows the result when not empty.
type FindDuplicateOrdersQuery struct {
	orderID        kernel.UUID
	organizationID kernel.UUID
	statuses       []order.Status

	guard guard.ConstructorGuard
}

func NewFindDuplicateOrdersQuery(orderID, organizationID kernel.UUID, statuses ...order.Status) (FindDuplicateOrdersQuery, error) {
	errList := []error{orderID.Validate(), organizationID.Validate()}
	for _, s := range statuses {
		errList = append(errList, s.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return FindDuplicateOrdersQuery{}, err
	}

	return FindDuplicateOrdersQuery{
		orderID:        orderID,
		organizationID: organizationID,
		statuses:       statuses,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (q FindDuplicateOrdersQuery) Validate() error {
	return q.guard.Validate(ErrFindDuplicateOrdersQueryIsNotConstructed)
}

func (q FindDuplicateOrdersQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q FindDuplicateOrdersQuery) OrganizationID() kernel.UUID {
	return q.organizationID
}

// DuplicateOrderView is one earlier order with the same phone.
type DuplicateOrderView struct {
	ID          kernel.UUID
	OrderNumber string
	Status      string
	Total       decimal.Decimal
	FullName    string
	CreatedAt   time.Time
}

type FindDuplicateOrdersQueryResponse struct {
	Phone      string
	WindowDays int
	Orders     []DuplicateOrderView
}
