package order

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Delivery is the shipping address and contact of the order.
type Delivery struct {
	FullName   string
	Phone      kernel.Phone
	County     string
	City       string
	Address    string
	PostalCode string
}

func NewDelivery(fullName string, phone kernel.Phone, county, city, address, postalCode string) (Delivery, error) {
	d := Delivery{
		FullName:   strings.TrimSpace(fullName),
		Phone:      phone,
		County:     strings.TrimSpace(county),
		City:       strings.TrimSpace(city),
		Address:    strings.TrimSpace(address),
		PostalCode: strings.TrimSpace(postalCode),
	}
	if err := d.Validate(); err != nil {
		return Delivery{}, err
	}
	return d, nil
}

// Validate checks the fields required by the fulfillment system. PostalCode is optional.
func (d Delivery) Validate() error {
	var errList []error
	if d.FullName == "" {
		errList = append(errList, errs.NewValueIsRequiredError("fullName"))
	}
	if d.Phone.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("phone"))
	}
	if d.County == "" {
		errList = append(errList, errs.NewValueIsRequiredError("county"))
	}
	if d.City == "" {
		errList = append(errList, errs.NewValueIsRequiredError("city"))
	}
	if d.Address == "" {
		errList = append(errList, errs.NewValueIsRequiredError("address"))
	}
	return errors.Join(errList...)
}

// DeliveryPatch carries the corrections an operator makes while confirming an order.
// Nil fields are left unchanged.
type DeliveryPatch struct {
	FullName   *string
	Phone      *kernel.Phone
	County     *string
	City       *string
	Address    *string
	PostalCode *string
}

func (p *DeliveryPatch) IsEmpty() bool {
	return p == nil || (p.FullName == nil && p.Phone == nil && p.County == nil &&
		p.City == nil && p.Address == nil && p.PostalCode == nil)
}

// Apply returns d with the patch applied, validated as a whole.
func (p *DeliveryPatch) Apply(d Delivery) (Delivery, error) {
	if p.IsEmpty() {
		return d, nil
	}

	fullName, county, city, address, postalCode := d.FullName, d.County, d.City, d.Address, d.PostalCode
	phone := d.Phone
	if p.FullName != nil {
		fullName = *p.FullName
	}
	if p.Phone != nil {
		phone = *p.Phone
	}
	if p.County != nil {
		county = *p.County
	}
	if p.City != nil {
		city = *p.City
	}
	if p.Address != nil {
		address = *p.Address
	}
	if p.PostalCode != nil {
		postalCode = *p.PostalCode
	}

	return NewDelivery(fullName, phone, county, city, address, postalCode)
}
