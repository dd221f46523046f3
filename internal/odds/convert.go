// Package odds converts bookmaker prices into implied probabilities.
package odds

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
)

// AmericanToImplied converts American odds to implied probability.
// -150 -> 0.6, +150 -> 0.4. Zero and |odds| < 100 are not valid prices and return 0.
func AmericanToImplied(odds int) float64 {
	if odds > -100 && odds < 100 {
		return 0
	}
	d := decimal.NewFromInt(int64(odds))
	if odds > 0 {
		// Underdog: 100 / (odds + 100)
		p, _ := hundred.Div(d.Add(hundred)).Float64()
		return p
	}
	// Favorite: |odds| / (|odds| + 100)
	abs := d.Abs()
	p, _ := abs.Div(abs.Add(hundred)).Float64()
	return p
}

// DecimalToImplied converts decimal (European) odds to implied probability
func DecimalToImplied(price decimal.Decimal) float64 {
	if price.LessThanOrEqual(one) {
		return 0
	}
	p, _ := one.Div(price).Float64()
	return p
}

// Parse converts a price string to implied probability.
// Accepts American ("+150", "-110") and decimal ("2.50") formats.
func Parse(raw string) (float64, error) {
	d, american, err := parsePrice(raw)
	if err != nil {
		return 0, err
	}
	if american {
		return AmericanToImplied(int(d.IntPart())), nil
	}
	return DecimalToImplied(d), nil
}

// ToAmerican normalises an American or decimal price string to American odds.
// Decimal 2.50 -> +150, 1.50 -> -200.
func ToAmerican(raw string) (int, error) {
	d, american, err := parsePrice(raw)
	if err != nil {
		return 0, err
	}
	if american {
		return int(d.IntPart()), nil
	}

	profit := d.Sub(one)
	if d.GreaterThanOrEqual(two) {
		return int(profit.Mul(hundred).Round(0).IntPart()), nil
	}
	return int(hundred.Neg().Div(profit).Round(0).IntPart()), nil
}

// parsePrice validates a price string and reports whether it is American
func parsePrice(raw string) (decimal.Decimal, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false, fmt.Errorf("empty odds")
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid odds %q: %w", raw, err)
	}

	// American odds always carry a sign or sit at |value| >= 100
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") || d.Abs().GreaterThanOrEqual(hundred) {
		if !d.IsInteger() || d.Abs().LessThan(hundred) {
			return decimal.Zero, false, fmt.Errorf("invalid american odds %q", raw)
		}
		return d, true, nil
	}

	if d.LessThanOrEqual(one) {
		return decimal.Zero, false, fmt.Errorf("invalid decimal odds %q", raw)
	}
	return d, false, nil
}

// RemoveVig removes the bookmaker margin from a two-way market
// proportionally, so the returned probabilities sum to 1.0.
func RemoveVig(impliedA, impliedB float64) (float64, float64) {
	if impliedA <= 0 || impliedB <= 0 {
		return 0, 0
	}
	total := impliedA + impliedB
	return impliedA / total, impliedB / total
}

// Overround returns the market margin of a two-way book (sum of implied - 1)
func Overround(impliedA, impliedB float64) float64 {
	return impliedA + impliedB - 1
}
