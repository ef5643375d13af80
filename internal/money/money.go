// Package money holds minor-unit arithmetic and display helpers.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrOverflow is returned when a sum does not fit in int64.
var ErrOverflow = errors.New("amount overflows int64 minor units")

// Add returns a+b or ErrOverflow.
func Add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// Sum adds all amounts, failing on overflow.
func Sum(amounts ...int64) (int64, error) {
	var total int64
	for _, a := range amounts {
		var err error
		if total, err = Add(total, a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// zeroDecimal lists ISO 4217 currencies without a minor unit.
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
	"ISK": true,
	"UGX": true,
}

// threeDecimal lists ISO 4217 currencies with three minor digits.
var threeDecimal = map[string]bool{
	"BHD": true,
	"JOD": true,
	"KWD": true,
	"OMR": true,
	"TND": true,
}

// Exponent returns the number of minor digits for a currency code (default 2).
func Exponent(currency string) int32 {
	code := strings.ToUpper(currency)
	switch {
	case zeroDecimal[code]:
		return 0
	case threeDecimal[code]:
		return 3
	default:
		return 2
	}
}

// ValidCurrency reports whether code looks like an ISO 4217 code: three
// uppercase ASCII letters.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Decimal converts a minor-unit amount to its major-unit decimal value.
func Decimal(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Exponent(currency))
}

// Format renders a minor-unit amount like "1234.50 CNY".
func Format(minor int64, currency string) string {
	s := Decimal(minor, currency).StringFixed(Exponent(currency))
	if currency == "" {
		return s
	}
	return s + " " + strings.ToUpper(currency)
}

// ParseMajor parses a major-unit string ("12.34") into minor units,
// rejecting values with more precision than the currency allows.
func ParseMajor(s, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	exp := Exponent(currency)
	scaled := d.Shift(exp)
	if !scaled.IsInteger() {
		return 0, errors.New("too many decimal places for " + strings.ToUpper(currency))
	}
	if scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, ErrOverflow
	}
	return scaled.IntPart(), nil
}
