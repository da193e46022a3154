// Package money renders integer minor-unit amounts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const defaultExponent = 2

// exponents lists currencies without two minor digits.
var exponents = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"CLP": 0,
}

// Exponent returns the number of minor digits for currency.
func Exponent(currency string) int32 {
	if exp, ok := exponents[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return exp
	}
	return defaultExponent
}

// FormatMinor renders minor units as a fixed-point major-unit string.
func FormatMinor(amount int64, currency string) string {
	exp := Exponent(currency)
	return decimal.NewFromInt(amount).Shift(-exp).StringFixed(exp)
}

// Display renders the amount followed by its currency code.
func Display(amount int64, currency string) string {
	return FormatMinor(amount, currency) + " " + strings.ToUpper(strings.TrimSpace(currency))
}
