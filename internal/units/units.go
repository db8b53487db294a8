// Package units converts between raw fixed-point on-chain amounts and
// human-readable decimal values.
package units

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a user-entered amount cannot be
// parsed as a non-negative decimal at the requested precision.
var ErrInvalidAmount = errors.New("invalid amount")

// ToDecimal converts a fixed-point integer amount into a display value
// by dividing by 10^decimals. The result is lossy and must never be
// resubmitted on-chain without re-scaling through ToFixedPoint.
func ToDecimal(amount *big.Int, decimals int) float64 {
	if amount == nil {
		return 0
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).InexactFloat64()
}

// ToFixedPoint parses a user-entered decimal string into a scaled
// integer. Thousands separators (commas and underscores) are stripped
// before parsing, matching what users paste from UIs. The input must
// be a non-negative decimal with at most `decimals` fractional digits;
// there is no rounding.
func ToFixedPoint(text string, decimals int) (*big.Int, error) {
	clean := strings.TrimSpace(text)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "_", "")
	if clean == "" {
		return nil, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if d.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if fractionalDigits(d) > decimals {
		return nil, ErrInvalidAmount
	}

	return d.Shift(int32(decimals)).BigInt(), nil
}

// fractionalDigits counts significant digits after the decimal point,
// ignoring trailing zeros ("1.50" has one).
func fractionalDigits(d decimal.Decimal) int {
	exp := d.Exponent()
	if exp >= 0 {
		return 0
	}
	// Drop trailing zeros from the coefficient before counting.
	coef := new(big.Int).Abs(d.Coefficient())
	ten := big.NewInt(10)
	rem := new(big.Int)
	for exp < 0 {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}
	return int(-exp)
}
