package core

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Currencies lists the selectable display currencies in menu order.
var Currencies = []Currency{CurrencyNGN, CurrencyUSD, CurrencyEUR, CurrencyGBP}

var currencyNames = map[Currency]string{
	CurrencyNGN: "Nigerian Naira",
	CurrencyUSD: "US Dollar",
	CurrencyEUR: "Euro",
	CurrencyGBP: "British Pound",
}

// Symbol returns the glyph printed in front of amounts.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	case CurrencyGBP:
		return "£"
	default:
		return "₦"
	}
}

// Label is the menu text, e.g. "₦ Nigerian Naira (NGN)".
func (c Currency) Label() string {
	return fmt.Sprintf("%s %s (%s)", c.Symbol(), currencyNames[c], string(c))
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := currencyNames[c]; !ok {
		return "", NewValidationError("Please choose a supported currency", ErrInvalidCurrency)
	}
	return c, nil
}

// FormatMoney renders an amount with the currency glyph and thousands
// separators. The fraction is printed only when it is not zero.
//
//	FormatMoney(NewMoney(45000), CurrencyNGN) -> "₦45,000"
func FormatMoney(m Money, c Currency) string {
	minor := m.Minor
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	s := sign + c.Symbol() + humanize.Comma(minor/100)
	if frac := minor % 100; frac != 0 {
		s += "." + strings.TrimRight(fmt.Sprintf("%02d", frac), "0")
	}
	return s
}
