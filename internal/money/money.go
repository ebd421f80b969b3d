package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// The engine stores every monetary amount as an int64 count of minor
// units (cents). The boundary accepts decimal strings and converts them
// here; floating point never enters the ledger.

var ErrInvalidAmount = errors.New("invalid amount")

const minorUnitExponent = 2

// ParseMinorUnits converts a decimal string such as "150.00" into minor
// units. It fails with ErrInvalidAmount when the value is not a number,
// is zero or negative, or carries precision below one minor unit.
func ParseMinorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}
	minor := d.Shift(minorUnitExponent)
	// Check the value, not the textual exponent: "1.50" and "1.500" are
	// both fine, "1.505" is not.
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-cent precision", ErrInvalidAmount, s)
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	v := minor.IntPart()
	if v <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	return v, nil
}

// FormatMinorUnits renders minor units back into a decimal string.
func FormatMinorUnits(v int64) string {
	return decimal.New(v, -minorUnitExponent).StringFixed(minorUnitExponent)
}
