package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits every ledger amount carries.
const AmountScale int32 = 2

// ValidateAmount checks that an amount is non-negative and representable at
// AmountScale without rounding.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%s must not be negative, got %s", field, amount.String())
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%s has more than %d decimal places: %s", field, AmountScale, amount.String())
	}
	return nil
}

// FormatAmount renders an amount at the ledger scale, e.g. "1150.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountScale)
}
