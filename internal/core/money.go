// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing decimal amounts from client input
// and rendering them back with a fixed number of fractional digits.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// AmountDecimalPlaces is the maximum number of fractional digits accepted.
	AmountDecimalPlaces = 2
	// AmountMaxDigits is the maximum number of significant digits accepted.
	AmountMaxDigits = 12

	// maxAmountLength bounds the textual form, sign and exponent included.
	maxAmountLength = 64
)

var (
	ErrInvalidAmount = errors.New(MsgNumber)

	errTooManyDecimals = fmt.Errorf("Ensure that there are no more than %d decimal places.", AmountDecimalPlaces)
	errTooManyWhole    = fmt.Errorf("Ensure that there are no more than %d digits before the decimal point.", AmountMaxDigits-AmountDecimalPlaces)

	amountCeiling = decimal.New(1, AmountMaxDigits-AmountDecimalPlaces)
)

// ParseAmount converts a decimal string to an amount.
//
// Only a dot is accepted as decimal separator, with an optional sign and
// exponent. Unlike a cents conversion it never rounds: values with more
// precision than AmountDecimalPlaces are rejected by CheckAmount.
//
// Examples:
//
//	ParseAmount("-4.50") -> -4.5, nil
//	ParseAmount("1200")  -> 1200, nil
//	ParseAmount("1,000") -> 0, ErrInvalidAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLength {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	return d, nil
}

// CheckAmount enforces the precision limits of a stored amount. The exponent
// is bounded before any arithmetic so that rescaling stays cheap.
func CheckAmount(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	exp := d.Exponent()
	if exp >= AmountMaxDigits-AmountDecimalPlaces {
		return errTooManyWhole
	}
	if exp < -(AmountMaxDigits + AmountDecimalPlaces) {
		return errTooManyDecimals
	}
	if !d.Equal(d.Truncate(AmountDecimalPlaces)) {
		return errTooManyDecimals
	}
	if d.Abs().GreaterThanOrEqual(amountCeiling) {
		return errTooManyWhole
	}
	return nil
}

// FormatAmount renders d with exactly AmountDecimalPlaces fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountDecimalPlaces)
}
