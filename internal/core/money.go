// Package core holds the wallet's domain types and the pure update rules
// applied to them.
//
// Amounts are kept in minor units (kobo, cents, pence) so that sums and
// clamps never suffer from floating point drift.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount expressed in minor units of the active currency.
type Money struct {
	Minor int64
}

// NewMoney builds a Money value from whole currency units.
func NewMoney(major int64) Money {
	return Money{Minor: major * 100}
}

func (m Money) Add(o Money) Money { return Money{Minor: m.Minor + o.Minor} }
func (m Money) Sub(o Money) Money { return Money{Minor: m.Minor - o.Minor} }

func (m Money) IsZero() bool     { return m.Minor == 0 }
func (m Money) IsNegative() bool { return m.Minor < 0 }

// Major returns the amount in whole units for charts and input fields.
// Use Minor for arithmetic.
func (m Money) Major() float64 {
	return float64(m.Minor) / 100.0
}

// InputString renders the amount the way an edit field should show it:
// no separators, no glyph, fraction only when present.
func (m Money) InputString() string {
	neg := m.Minor < 0
	minor := m.Minor
	if neg {
		minor = -minor
	}
	s := strconv.FormatInt(minor/100, 10)
	if frac := minor % 100; frac != 0 {
		s += "." + strings.TrimRight(strconv.FormatInt(100+frac, 10)[1:], "0")
	}
	if neg {
		s = "-" + s
	}
	return s
}

func (m Money) Validate() error {
	if m.Minor <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Min returns the smaller of two amounts.
func Min(a, b Money) Money {
	if a.Minor < b.Minor {
		return a
	}
	return b
}

// ParseAmount converts user input into a strictly positive amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and the
// third fractional digit is rounded half-up. Signs, zero and anything that is
// not a plain decimal number are rejected with ErrInvalidAmount.
//
//	ParseAmount("1500")   -> 150000
//	ParseAmount("12,345") -> 1235
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	minor, err := parseMinor(s)
	if err != nil {
		return Money{}, err
	}
	if minor <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Minor: minor}, nil
}

// ParseBalance is the lenient parser used when committing a balance edit.
// Empty or malformed input yields zero; a leading minus is honoured so an
// overdrawn balance can be entered.
func ParseBalance(s string) Money {
	s = strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	minor, err := parseMinor(s)
	if err != nil {
		return Money{}
	}
	if neg {
		minor = -minor
	}
	return Money{Minor: minor}
}

func parseMinor(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Leaves room for two fractional digits plus the rounding carry.
	const maxWhole = (1<<63 - 1 - 99) / 100
	if iv > maxWhole {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, then half-up on the third.
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return iv*100 + frac, nil
}
