// Package calc implements the loan financial calculation engine: unit
// conversion across per-currency decimal scales, collateral requirement
// sizing, origination economics, and early-exit estimates. Every function in
// this package is pure; currency, rate, and policy records are passed in by
// the caller.
package calc

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateScale is the fixed precision of stored exchange-rate bid/ask integers:
// a stored price of 2000 * 1e18 means 2000.0 quote units per base unit.
const RateScale = 18

// ToSmallestUnit converts a human-readable decimal amount to the currency's
// integer smallest-unit representation. Excess precision is truncated toward
// zero, never rounded up, so precision loss can only reduce the amount.
func ToSmallestUnit(humanAmount string, decimals uint32) (string, error) {
	d, err := decimal.NewFromString(humanAmount)
	if err != nil {
		return "", fmt.Errorf("invalid decimal amount %q: %w", humanAmount, err)
	}
	return d.Shift(int32(decimals)).Truncate(0).String(), nil
}

// FromSmallestUnit converts an integer smallest-unit amount back to a human
// decimal string. The division by 10^decimals is exact; no rounding occurs.
func FromSmallestUnit(smallestAmount string, decimals uint32) (string, error) {
	d, err := decimal.NewFromString(smallestAmount)
	if err != nil {
		return "", fmt.Errorf("invalid integer amount %q: %w", smallestAmount, err)
	}
	if !d.IsInteger() {
		return "", fmt.Errorf("amount %q is not in smallest units", smallestAmount)
	}
	return d.Shift(-int32(decimals)).String(), nil
}

// parseAmount parses a smallest-unit integer string into a decimal, rejecting
// fractional input. Shared by the calculators so they all fail the same way.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsInteger() {
		return decimal.Zero, fmt.Errorf("amount %q is not in smallest units", s)
	}
	return d, nil
}

// rateFromScaled converts a stored integer-scaled price (RateScale implied
// decimal places) into its decimal value.
func rateFromScaled(scaled string) (decimal.Decimal, error) {
	d, err := parseAmount(scaled)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Shift(-RateScale), nil
}
