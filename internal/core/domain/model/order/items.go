package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// UpsellType tells whether an upsell was taken at checkout or during the post-purchase window.
type UpsellType string

const (
	Presale  UpsellType = "presale"
	Postsale UpsellType = "postsale"
)

func (t UpsellType) Validate() error {
	if t != Presale && t != Postsale {
		return errs.NewValueIsInvalidErrorWithCause("upsell type", fmt.Errorf("%q is not presale or postsale", string(t)))
	}
	return nil
}

// LineItem is the main product of the order.
type LineItem struct {
	ProductName string
	SKU         string
	Quantity    int
}

func NewLineItem(productName, sku string, quantity int) (LineItem, error) {
	item := LineItem{
		ProductName: strings.TrimSpace(productName),
		SKU:         strings.TrimSpace(sku),
		Quantity:    quantity,
	}
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

func (i LineItem) Validate() error {
	var errList []error
	if i.ProductName == "" {
		errList = append(errList, errs.NewValueIsRequiredError("productName"))
	}
	if i.Quantity <= 0 {
		errList = append(errList,
			errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", i.Quantity)))
	}
	return errors.Join(errList...)
}

// Upsell is an additional product attached to the order. Price is per unit.
type Upsell struct {
	UpsellID kernel.UUID
	Title    string
	Quantity int
	Price    decimal.Decimal
	Type     UpsellType
}

func NewUpsell(upsellID kernel.UUID, title string, quantity int, price decimal.Decimal, upsellType UpsellType) (Upsell, error) {
	u := Upsell{
		UpsellID: upsellID,
		Title:    strings.TrimSpace(title),
		Quantity: quantity,
		Price:    price.Round(kernel.MoneyScale),
		Type:     upsellType,
	}
	if err := u.Validate(); err != nil {
		return Upsell{}, err
	}
	return u, nil
}

func (u Upsell) Validate() error {
	var errList []error
	if err := u.UpsellID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if u.Title == "" {
		errList = append(errList, errs.NewValueIsRequiredError("upsell title"))
	}
	if u.Quantity <= 0 {
		errList = append(errList,
			errs.NewValueIsInvalidErrorWithCause("upsell quantity", fmt.Errorf("%d is not greater than 0", u.Quantity)))
	}
	if _, err := kernel.NewAmount("upsell price", u.Price); err != nil {
		errList = append(errList, err)
	}
	if err := u.Type.Validate(); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

// Amount is the upsell contribution to the order total.
func (u Upsell) Amount() decimal.Decimal {
	return kernel.LineAmount(u.Price, u.Quantity)
}
