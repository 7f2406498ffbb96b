// Package types - Money helpers
package types

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var nairaPrinter = message.NewPrinter(language.English)

// FormatNaira renders an amount as whole naira with thousands separators
func FormatNaira(d decimal.Decimal) string {
	return nairaPrinter.Sprintf("₦%d", d.Round(0).IntPart())
}

// RoundToNearest rounds d to the nearest multiple of step
func RoundToNearest(d decimal.Decimal, step int64) decimal.Decimal {
	if step <= 0 {
		return d
	}
	s := decimal.NewFromInt(step)
	return d.Div(s).Round(0).Mul(s)
}
