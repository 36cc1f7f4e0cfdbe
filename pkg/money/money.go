package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// zeroDecimalCurrencies lists ISO 4217 codes whose minor unit is the major unit.
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"KRW": {},
	"VND": {},
	"CLP": {},
	"ISK": {},
	"UGX": {},
	"RWF": {},
}

// defaultExponent is used by the zero Currency and by every code not listed
// in zeroDecimalCurrencies.
const defaultExponent int32 = 2

// Currency is an ISO 4217 currency code together with its minor-unit exponent.
// The zero value is a code-less currency with two decimal places.
type Currency struct {
	code     string
	exponent int32
}

// NewCurrency validates code and resolves its minor-unit exponent.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	exp := defaultExponent
	if _, ok := zeroDecimalCurrencies[code]; ok {
		exp = 0
	}
	return Currency{code: code, exponent: exp}, nil
}

// MustCurrency is NewCurrency for package-level variables.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	USD = MustCurrency("USD")
	EUR = MustCurrency("EUR")
	IDR = MustCurrency("IDR")
	JPY = MustCurrency("JPY")
)

// Code returns the ISO 4217 code, empty for the zero Currency.
func (c Currency) Code() string { return c.code }

// String returns the currency code.
func (c Currency) String() string { return c.code }

// IsZero reports whether the currency carries no code.
func (c Currency) IsZero() bool { return c.code == "" }

// Exponent is the number of decimal places of the minor unit.
func (c Currency) Exponent() int32 {
	if c.code == "" {
		return defaultExponent
	}
	return c.exponent
}

// MinorUnit returns the smallest representable amount, e.g. 0.01 for USD.
func (c Currency) MinorUnit() decimal.Decimal {
	return decimal.New(1, -c.Exponent())
}

// Round rounds amount half away from zero to the currency's minor unit.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Exponent())
}

// Format renders amount for display with thousands separators, for example
// "USD 1,234,567.89". It is presentation only and never feeds a calculation.
func Format(amount decimal.Decimal, c Currency) string {
	fixed := c.Round(amount).StringFixed(c.Exponent())

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	if c.code == "" {
		return out
	}
	return c.code + " " + out
}
