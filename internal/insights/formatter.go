// Package insights rewrites monetary tokens embedded in free-text insight
// strings into the display locale's currency notation. It is a best-effort
// textual transform: anything it cannot parse passes through unchanged.
package insights

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// currencyToken matches a numeric token immediately preceded by the rupee
// marker, e.g. "₹1,23,456.78" or "INR 4500". Numbers without the marker are
// never touched.
var currencyToken = regexp.MustCompile(`(?:₹|INR\s?)\s?([0-9][0-9,]*(?:\.[0-9]+)?)`)

// Formatter renders rupee-tagged amounts in a configured locale and
// currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter builds a Formatter for a BCP 47 locale tag (e.g. "en-IN")
// and an ISO 4217 currency code (e.g. "INR").
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid display locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid display currency %q: %w", currencyCode, err)
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}, nil
}

// Rewrite replaces the first currency-tagged token in s with its localized
// rendering. If no token is found, or the token's numeric value does not
// parse, s is returned unmodified.
func (f *Formatter) Rewrite(s string) string {
	loc := currencyToken.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}

	raw := s[loc[2]:loc[3]]
	value, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return s
	}

	return s[:loc[0]] + f.format(value) + s[loc[1]:]
}

// RewriteAll applies Rewrite to every string in the slice, returning a new
// slice.
func (f *Formatter) RewriteAll(strs []string) []string {
	if strs == nil {
		return nil
	}
	out := make([]string, len(strs))
	for i, s := range strs {
		out[i] = f.Rewrite(s)
	}
	return out
}

func (f *Formatter) format(v decimal.Decimal) string {
	symbol := f.printer.Sprint(currency.Symbol(f.unit))
	amount := f.printer.Sprint(number.Decimal(v.InexactFloat64(),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
	return symbol + amount
}
