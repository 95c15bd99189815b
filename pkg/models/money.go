package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ComputeTotals derives the tax amount and total from a subtotal and an
// integer-like percentage tax rate: taxAmount = subtotal × rate/100 rounded
// to 2 decimals, total = subtotal + taxAmount. Both results are fixed
// 2-decimal strings. Unparseable inputs are treated as zero.
func ComputeTotals(subtotal, taxRate string) (taxAmount, total string) {
	sub := parseAmount(subtotal)
	rate := parseAmount(taxRate)

	tax := sub.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	return tax.StringFixed(2), sub.Add(tax).Round(2).StringFixed(2)
}

// FormatAmount normalizes an amount string to fixed 2-decimal form, e.g.
// "100" -> "100.00". Unparseable input is returned unchanged.
func FormatAmount(s string) string {
	d, err := decimal.NewFromString(normalizeNumber(s))
	if err != nil {
		return s
	}
	return d.StringFixed(2)
}

// AddAmounts sums two amount strings. Unparseable operands count as zero.
func AddAmounts(a, b string) string {
	return parseAmount(a).Add(parseAmount(b)).String()
}

// IsNumeric reports whether s parses as a decimal number after trimming and
// comma-to-dot normalization.
func IsNumeric(s string) bool {
	_, err := decimal.NewFromString(normalizeNumber(s))
	return err == nil
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(normalizeNumber(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	// European-style decimal comma shows up in hand-entered sheets.
	return strings.ReplaceAll(s, ",", ".")
}
