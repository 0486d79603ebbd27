package kernel

import (
	"fmt"

	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for prices and totals.
const MoneyScale = 2

// NewAmount validates a non-negative monetary amount and rounds it to MoneyScale.
func NewAmount(paramName string, value decimal.Decimal) (decimal.Decimal, error) {
	if value.IsNegative() {
		return decimal.Zero, errs.NewValueIsInvalidErrorWithCause(paramName, fmt.Errorf("%s is negative", value.String()))
	}
	return value.Round(MoneyScale), nil
}

// ParseAmount parses a decimal string such as "49.99".
func ParseAmount(paramName, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errs.NewValueIsInvalidErrorWithCause(paramName, err)
	}
	return NewAmount(paramName, value)
}

// LineAmount is price multiplied by quantity, rounded to MoneyScale.
func LineAmount(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(MoneyScale)
}
