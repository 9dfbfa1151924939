package amount

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount occurs when a textual amount cannot be parsed as a
	// decimal number or does not fit the fixed-point representation.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeAmount indicates a negative monetary value, which is never
	// representable in this system.
	ErrNegativeAmount = errors.New("negative amount")
)

// fractionalDigits is the fixed precision of all monetary values.
const fractionalDigits = 4

// minorPerUnit is the number of minor units in one whole unit.
const minorPerUnit = 10_000

// Amount is a non-negative monetary value held as an exact count of minor
// units (1/10000ths of a unit). Arithmetic on Amounts is plain integer
// arithmetic and never drifts.
type Amount uint64

// Parse converts decimal text into an Amount. Values with more than four
// fractional digits are rounded half away from zero (half-up, since the
// domain is non-negative). Negative values fail with ErrNegativeAmount,
// anything unparseable with ErrInvalidAmount.
func Parse(text string) (Amount, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegativeAmount, text)
	}

	minor := d.Round(fractionalDigits).Shift(fractionalDigits)
	if minor.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 {
		return 0, fmt.Errorf("%w: %q exceeds representable range", ErrInvalidAmount, text)
	}

	return Amount(minor.IntPart()), nil
}

// String renders the amount with exactly four fractional digits and no
// thousands separators.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%04d", uint64(a)/minorPerUnit, uint64(a)%minorPerUnit)
}

// Add returns a+b in the minor-unit domain.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Sub returns a-b. Callers must ensure a >= b first; balances never go
// negative, so every caller checks before subtracting.
func (a Amount) Sub(b Amount) Amount {
	return a - b
}
