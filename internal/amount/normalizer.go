// Package amount parses the free-form monetary text found in payroll exports.
//
// Payroll cells look like "1,234.56 BRL" or "1 234.56" with a non-breaking
// space. Normalize strips that noise and parses what is left. A cell that does
// not parse yields Unparsed instead of an error; summing code decides what an
// Unparsed cell is worth (zero for batch transfers).
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// nbsp is the non-breaking space spreadsheets use as a thousands separator.
const nbsp = "\u00a0"

// noise lists literal substrings removed before parsing, in removal order.
var noise = []string{"BRL", ","}

// Amount is the result of normalizing one cell: either Parsed(value) or
// Unparsed. The zero Amount is Unparsed.
type Amount struct {
	value  decimal.Decimal
	parsed bool
}

// Unparsed is the "no value" result.
var Unparsed = Amount{}

// Parsed wraps a successfully parsed value.
func Parsed(v decimal.Decimal) Amount {
	return Amount{value: v, parsed: true}
}

// Value returns the parsed value and true, or zero and false for Unparsed.
func (a Amount) Value() (decimal.Decimal, bool) {
	if !a.parsed {
		return decimal.Zero, false
	}
	return a.value, true
}

// IsParsed reports whether the cell held a number.
func (a Amount) IsParsed() bool {
	return a.parsed
}

// OrZero returns the parsed value, or zero for Unparsed.
func (a Amount) OrZero() decimal.Decimal {
	if !a.parsed {
		return decimal.Zero
	}
	return a.value
}

// String renders the amount for logs.
func (a Amount) String() string {
	if !a.parsed {
		return "<unparsed>"
	}
	return a.value.String()
}

// Normalize strips currency-code noise, thousands separators, non-breaking
// spaces and surrounding whitespace from text, then parses the remainder as a
// decimal. The minus sign is not stripped, so negative amounts keep their sign.
//
// Examples:
//
//	Normalize("1,234.56 BRL")  -> Parsed(1234.56)
//	Normalize("-50")           -> Parsed(-50)
//	Normalize("")              -> Unparsed
//	Normalize("n/a")           -> Unparsed
func Normalize(text string) Amount {
	for _, n := range noise {
		text = strings.ReplaceAll(text, n, "")
	}
	text = strings.ReplaceAll(text, nbsp, "")
	text = strings.TrimSpace(text)

	if text == "" {
		return Unparsed
	}

	v, err := decimal.NewFromString(text)
	if err != nil {
		return Unparsed
	}
	return Parsed(v)
}

// Sum normalizes every text and adds the parsed values. Unparsed cells count
// as zero; the number of such cells is returned alongside the total.
func Sum(texts []string) (total decimal.Decimal, unparsed int) {
	total = decimal.Zero
	for _, t := range texts {
		a := Normalize(t)
		if !a.IsParsed() {
			unparsed++
		}
		total = total.Add(a.OrZero())
	}
	return total, unparsed
}
