package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is an amount of money in integer minor units (CAD cents).
// All internal arithmetic and comparisons happen in cents; decimal
// strings exist only at the I/O boundary.
type Cents int64

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// ParseAmount parses a user-entered currency string into cents.
// Thousands separators and surrounding whitespace are stripped, the value
// is rounded to cent precision, and negative or non-finite inputs are
// rejected rather than clamped.
func ParseAmount(input string) (Cents, error) {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")

	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrInvalidAmount, input)
	}

	if value < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, input)
	}

	cents := math.Round(value * 100)
	if cents > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, input)
	}

	return Cents(cents), nil
}

// FromDollars converts a decimal dollar value to cents, rounding to cent
// precision.
func FromDollars(dollars float64) Cents {
	return Cents(math.Round(dollars * 100))
}

// Dollars returns the decimal dollar value of the amount.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// Format renders the amount as a two-decimal string, e.g. "1234.50".
func (c Cents) Format() string {
	return strconv.FormatFloat(c.Dollars(), 'f', 2, 64)
}

// String implements fmt.Stringer.
func (c Cents) String() string {
	return c.Format()
}
