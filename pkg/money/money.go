// Package money handles store amounts as integer cents.
//
// The inventory API speaks float prices; everything inside the POS is summed
// in cents so cart totals never drift from float rounding.
package money

import (
	"fmt"
	"math"
)

// Cents is an amount in hundredths of the store currency.
type Cents int64

// FromFloat converts an API float price to cents, rounding half away
// from zero.
func FromFloat(v float64) Cents {
	return Cents(math.Round(v * 100))
}

// Float converts back to the API's float representation.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// Mul multiplies an amount by a quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// String formats the amount with two decimals, e.g. "30.00".
func (c Cents) String() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
