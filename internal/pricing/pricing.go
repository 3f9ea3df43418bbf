// Package pricing formats catalog prices the way the storefront shows them (es-AR).
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	thousandsSep = "."
	decimalSep   = ","
)

var hundred = decimal.NewFromInt(100)

// FormatPrice renders price with two decimals, "." grouping and "," as decimal separator.
func FormatPrice(price float64) string {
	integer, fraction := SplitPrice(price)
	return integer + decimalSep + fraction
}

// SplitPrice returns the grouped integer part and the two-digit fraction of price.
func SplitPrice(price float64) (integer, fraction string) {
	fixed := decimal.NewFromFloat(price).StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	parts := strings.SplitN(fixed, ".", 2)
	integer = group(parts[0])
	if neg {
		integer = "-" + integer
	}
	fraction = "00"
	if len(parts) == 2 {
		fraction = parts[1]
	}
	return integer, fraction
}

// FormatListPrice renders the floored integer part of price with grouping.
func FormatListPrice(price float64) string {
	d := decimal.NewFromFloat(price).Floor()
	if d.IsNegative() {
		return "-" + group(d.Neg().String())
	}
	return group(d.String())
}

// Discount returns the rounded percentage off original, or 0 when there is no reduction.
func Discount(price, original float64) int {
	p := decimal.NewFromFloat(price)
	o := decimal.NewFromFloat(original)
	if !o.IsPositive() || !o.GreaterThan(p) {
		return 0
	}
	off := decimal.NewFromInt(1).Sub(p.Div(o)).Mul(hundred).Round(0)
	return int(off.IntPart())
}

// FormatCondition maps an item condition to its label.
func FormatCondition(condition string) string {
	if condition == "new" {
		return "Nuevo"
	}
	return "Usado"
}

// FormatInstallments renders "<n>x $ <amount>".
func FormatInstallments(quantity int, amount float64) string {
	return fmt.Sprintf("%dx $ %s", quantity, FormatPrice(amount))
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(thousandsSep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
