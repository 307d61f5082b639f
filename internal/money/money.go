// Package money parses user- and server-supplied amounts and formats them
// for display with locale-aware digit grouping.
package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// ErrEmptyAmount is returned when nothing numeric is left after cleaning.
var ErrEmptyAmount = errors.New("amount is empty")

var nonNumeric = regexp.MustCompile(`[^0-9.,-]+`)

// Clean strips everything except digits, '.', ',' and '-', then turns commas
// into decimal points.
func Clean(raw string) string {
	return strings.ReplaceAll(nonNumeric.ReplaceAllString(raw, ""), ",", ".")
}

// Parse cleans raw and parses it as a decimal amount.
func Parse(raw string) (decimal.Decimal, error) {
	cleaned := Clean(raw)
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Zero, ErrEmptyAmount
	}
	return decimal.NewFromString(cleaned)
}

// Loose parses stored values that may be numbers, numeric strings or junk.
// Anything unparsable yields zero.
func Loose(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(raw); err == nil {
		return d
	}
	if d, err := Parse(raw); err == nil {
		return d
	}
	return decimal.Zero
}

// Formatter renders amounts with the grouping rules of a locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a formatter for the given BCP 47 locale and currency
// symbol. Unknown locales fall back to Indonesian.
func NewFormatter(locale, symbol string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Indonesian
	}
	return Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Amount renders d with digit grouping; fractions keep two places.
func (f Formatter) Amount(d decimal.Decimal) string {
	if d.IsInteger() {
		return f.printer.Sprintf("%d", d.IntPart())
	}
	return f.printer.Sprintf("%.2f", d.InexactFloat64())
}

// Currency renders d prefixed with the currency symbol.
func (f Formatter) Currency(d decimal.Decimal) string {
	if f.symbol == "" {
		return f.Amount(d)
	}
	return f.symbol + " " + f.Amount(d)
}

// Signed renders d as "+ Rp 5.000" for money in and "- Rp 5.000" for money out.
func (f Formatter) Signed(dir model.Direction, d decimal.Decimal) string {
	sign := "-"
	if dir == model.DirectionIn {
		sign = "+"
	}
	return sign + " " + f.Currency(d.Abs())
}
