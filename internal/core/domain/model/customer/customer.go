package customer

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer or RestoreCustomer")

// Customer aggregates the finalized orders placed with one phone number inside an organization.
type Customer struct {
	id             kernel.UUID
	organizationID kernel.UUID
	phone          kernel.Phone
	fullName       string

	totalOrders    int
	totalSpent     decimal.Decimal
	firstOrderDate *time.Time
	lastOrderDate  *time.Time

	isConstructed bool
}

// NewCustomer creates a customer with no recorded orders.
func NewCustomer(id, organizationID kernel.UUID, phone kernel.Phone, fullName string) (*Customer, error) {
	var errList []error
	errList = append(errList, id.Validate(), organizationID.Validate())
	if phone.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("phone"))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Customer{
		id:             id,
		organizationID: organizationID,
		phone:          phone,
		fullName:       fullName,
		totalSpent:     decimal.Zero,
		isConstructed:  true,
	}, nil
}

// RestoreCustomer rebuilds a customer read back from storage.
func RestoreCustomer(
	id, organizationID kernel.UUID,
	phone kernel.Phone,
	fullName string,
	totalOrders int,
	totalSpent decimal.Decimal,
	firstOrderDate, lastOrderDate *time.Time,
) (*Customer, error) {
	c, err := NewCustomer(id, organizationID, phone, fullName)
	if err != nil {
		return nil, err
	}
	if totalOrders < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("totalOrders", fmt.Errorf("%d is negative", totalOrders))
	}
	c.totalOrders = totalOrders
	c.totalSpent = totalSpent
	c.firstOrderDate = firstOrderDate
	c.lastOrderDate = lastOrderDate
	return c, nil
}

func (c *Customer) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCustomerIsNotConstructed
	}
	return nil
}

func (c *Customer) ID() kernel.UUID { return c.id }
func (c *Customer) OrganizationID() kernel.UUID { return c.organizationID }
func (c *Customer) Phone() kernel.Phone { return c.phone }
func (c *Customer) FullName() string { return c.fullName }
func (c *Customer) TotalOrders() int { return c.totalOrders }
func (c *Customer) TotalSpent() decimal.Decimal { return c.totalSpent }
func (c *Customer) FirstOrderDate() *time.Time { return c.firstOrderDate }
func (c *Customer) LastOrderDate() *time.Time { return c.lastOrderDate }

// RecordOrder counts a finalized order. The latest delivery name replaces the stored one.
func (c *Customer) RecordOrder(total decimal.Decimal, fullName string, at time.Time) error {
	amount, err := kernel.NewAmount("order total", total)
	if err != nil {
		return err
	}

	c.totalOrders++
	c.totalSpent = c.totalSpent.Add(amount)
	if c.firstOrderDate == nil || at.Before(*c.firstOrderDate) {
		first := at
		c.firstOrderDate = &first
	}
	if c.lastOrderDate == nil || at.After(*c.lastOrderDate) {
		last := at
		c.lastOrderDate = &last
	}
	if fullName != "" {
		c.fullName = fullName
	}
	return nil
}
