// Package money implements Amount, a non-negative fixed-point value with exactly
// four fractional digits and no upper bound.
package money

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits an Amount carries.
const Scale = 4

// ErrFormat is matched by every FormatError.
var ErrFormat = errors.New("invalid amount format")

// FormatError reports text that is not a valid amount.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// Amount is a count of ten-thousandths of a unit. The zero value is 0.0000.
// The wrapped decimal is always truncated to Scale places and never negative.
type Amount struct {
	value decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Amount {
	return Amount{}
}

// FromUnits builds an amount from a ten-thousandths count. Negative counts panic.
func FromUnits(units *big.Int) Amount {
	if units.Sign() < 0 {
		panic(fmt.Sprintf("money: negative units %s", units))
	}
	return Amount{value: decimal.NewFromBigInt(units, -Scale)}
}

// FromUnits64 is FromUnits for counts that fit in a uint64.
func FromUnits64(units uint64) Amount {
	return FromUnits(new(big.Int).SetUint64(units))
}

// Parse reads an amount such as "12", "12." or "12.3456". Fractional digits past the
// fourth are discarded, never rounded.
func Parse(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	for _, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' {
			return Amount{}, &FormatError{Input: s, Reason: fmt.Sprintf("unexpected character %q", r)}
		}
	}

	integral, fractional, hasPoint := strings.Cut(trimmed, ".")
	if integral == "" {
		return Amount{}, &FormatError{Input: s, Reason: "missing integral digits"}
	}
	if hasPoint && strings.Contains(fractional, ".") {
		return Amount{}, &FormatError{Input: s, Reason: "multiple decimal points"}
	}
	if len(fractional) > Scale {
		fractional = fractional[:Scale]
	}

	units, ok := new(big.Int).SetString(integral+fractional+strings.Repeat("0", Scale-len(fractional)), 10)
	if !ok {
		return Amount{}, &FormatError{Input: s, Reason: "not a number"}
	}
	return FromUnits(units), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{value: a.value.Add(b.value)}
}

// Sub returns a - b. The boolean is false when b exceeds a, in which case the
// returned amount is meaningless.
func (a Amount) Sub(b Amount) (Amount, bool) {
	if a.value.LessThan(b.value) {
		return Amount{}, false
	}
	return Amount{value: a.value.Sub(b.value)}, true
}

func (a Amount) Cmp(b Amount) int {
	return a.value.Cmp(b.value)
}

func (a Amount) Equal(b Amount) bool {
	return a.value.Equal(b.value)
}

func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// Units returns the ten-thousandths count.
func (a Amount) Units() *big.Int {
	return a.value.Shift(Scale).BigInt()
}

// Decimal exposes the value for callers that need decimal arithmetic.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

func (a Amount) String() string {
	return a.value.StringFixed(Scale)
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
