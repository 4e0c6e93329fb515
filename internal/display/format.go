package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/WealthGo/internal/models"
)

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
	thousand = decimal.New(1, 3)
)

// CompactAmount renders d as 391.04B style text with a currency prefix.
func CompactAmount(d decimal.Decimal, currency string) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	var body string
	switch {
	case d.GreaterThanOrEqual(trillion):
		body = d.Div(trillion).StringFixed(2) + "T"
	case d.GreaterThanOrEqual(billion):
		body = d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		body = d.Div(million).StringFixed(2) + "M"
	case d.GreaterThanOrEqual(thousand):
		body = d.Div(thousand).StringFixed(2) + "K"
	default:
		body = d.StringFixed(2)
	}
	return sign + currencyPrefix(currency) + body
}

// GroupedAmount renders d with thousands separators and no decimals,
// 15,750,000 style.
func GroupedAmount(d decimal.Decimal, currency string) string {
	s := d.Round(0).Abs().String()
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if d.Round(0).IsNegative() {
		sign = "-"
	}
	return sign + currencyPrefix(currency) + b.String()
}

func currencyPrefix(currency string) string {
	switch strings.ToUpper(currency) {
	case "", "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "CHF":
		return "CHF "
	default:
		return strings.ToUpper(currency) + " "
	}
}

// Figure prefers the backend's preformatted text, then a compact rendering
// of the raw number, then the raw text, then "N/A".
func Figure(formatted, raw models.FlexString, currency string) string {
	if s := strings.TrimSpace(formatted.String()); s != "" {
		return s
	}
	if d, ok := raw.Decimal(); ok {
		return CompactAmount(d, currency)
	}
	if s := strings.TrimSpace(raw.String()); s != "" {
		return s
	}
	return "N/A"
}

// Rating renders a 0-10 rating as x/10.
func Rating(r float64) string {
	r = models.ClampRating(r)
	if r == math.Trunc(r) {
		return fmt.Sprintf("%d/10", int(r))
	}
	return fmt.Sprintf("%.1f/10", r)
}
