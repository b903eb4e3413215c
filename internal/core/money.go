// Package core provides money parsing and handling utilities.
//
// Amounts are whole units of the local currency. Input follows the id-ID
// convention: "." groups thousands and "," separates decimals.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountUnits bounds every parsed amount, leaving headroom for sums.
const MaxAmountUnits int64 = 1 << 62

var maxAmount = decimal.NewFromInt(MaxAmountUnits)

// ParseAmount converts user input to whole units with half-up rounding.
//
// Examples:
//
//	ParseAmount("50000")     -> 50000, nil
//	ParseAmount("50.000")    -> 50000, nil
//	ParseAmount("1.250,50")  -> 1251, nil
//	ParseAmount("12,4")      -> 12, nil
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp")
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ",")
	if hasFrac && (fracPart == "" || strings.Contains(fracPart, ".")) {
		return 0, ErrInvalidAmount
	}
	groups := strings.Split(intPart, ".")
	for i, g := range groups {
		if g == "" || (i > 0 && len(g) != 3) {
			return 0, ErrInvalidAmount
		}
	}
	digits := strings.Join(groups, "")
	if hasFrac {
		digits += "." + fracPart
	}

	d, err := decimal.NewFromString(digits)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	units := d.Round(0)
	if !units.IsPositive() || !units.LessThan(maxAmount) {
		return 0, ErrInvalidAmount
	}
	return units.IntPart(), nil
}

// FormatAmount renders units with id-ID thousand separators ("50.000").
func FormatAmount(units int64) string {
	neg := units < 0
	if neg {
		units = -units
	}
	raw := strconv.FormatInt(units, 10)
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// String implements fmt.Stringer
func (m Money) String() string {
	return FormatAmount(m.Units)
}

// MarshalJSON encodes the amount as a plain number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Units, 10)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Units = v
	return nil
}
