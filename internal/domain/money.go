package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitExp is the number of decimal places stored for prices.
const MinorUnitExp = 2

// ErrNegativeAmount is returned for prices below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// ErrAmountTooLarge is returned for prices whose minor units overflow int64.
var ErrAmountTooLarge = errors.New("amount is too large")

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// ToMinorUnits converts a decimal amount to minor units, rounding half away
// from zero at the second decimal.
func ToMinorUnits(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	minor := d.Shift(MinorUnitExp).Round(0)
	if minor.GreaterThan(maxMinorUnits) {
		return 0, ErrAmountTooLarge
	}
	return minor.IntPart(), nil
}

// ParseAmount parses amount text such as "1299", "12.99" or "1,299.50".
// Blank text is zero.
func ParseAmount(text string) (int64, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	return ToMinorUnits(d)
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(v int64) decimal.Decimal {
	return decimal.New(v, -MinorUnitExp)
}
