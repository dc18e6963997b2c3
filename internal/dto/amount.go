package dto

import (
	"github.com/shopspring/decimal"
)

// Amount is a monetary value in a request body. It accepts both JSON numbers
// and strings ("150.00") through decimal.Decimal's JSON decoding.
type Amount = decimal.Decimal
