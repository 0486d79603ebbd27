package kernel

import (
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

// Phone is a normalized national phone number: ten digits with a leading zero.
// Customers are keyed by (organization, phone), so every order stores the normalized form.
type Phone struct {
	value string
}

// NewPhone accepts national ("0722 123 456") and international ("+40722123456", "0040722...")
// notations and normalizes them to "0722123456".
func NewPhone(raw string) (Phone, error) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '+':
		default:
			return Phone{}, errs.NewValueIsInvalidErrorWithCause("phone", fmt.Errorf("unexpected character %q", r))
		}
	}

	normalized := digits.String()
	normalized = strings.TrimPrefix(normalized, "00")
	if len(normalized) == 11 && strings.HasPrefix(normalized, "40") {
		normalized = "0" + normalized[2:]
	}

	if normalized == "" {
		return Phone{}, errs.NewValueIsRequiredError("phone")
	}
	if len(normalized) != 10 || normalized[0] != '0' {
		return Phone{}, errs.NewValueIsInvalidErrorWithCause("phone", fmt.Errorf("%q is not a 10 digit national number", raw))
	}

	return Phone{value: normalized}, nil
}

func (p Phone) String() string {
	return p.value
}

func (p Phone) IsZero() bool {
	return p.value == ""
}
