// Package procurement turns a priced BOQ into supplier order messages and
// click-to-send links.
package procurement

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
)

// NoItems is returned when a table has nothing worth ordering
const NoItems = "No items to order."

// OrderLines returns the lines worth ordering: priced lines with a total
func OrderLines(table *types.BOQTable) []types.PricedLine {
	if table == nil {
		return nil
	}
	var out []types.PricedLine
	for _, l := range table.Lines {
		if l.Total.IsPositive() {
			out = append(out, l)
		}
	}
	return out
}

// OrderMessage composes an order request to a supplier
func OrderMessage(location types.Location, table *types.BOQTable, supplier string) string {
	lines := OrderLines(table)
	if len(lines) == 0 {
		return NoItems
	}

	total := decimal.Zero
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", supplier)
	fmt.Fprintf(&b, "I would like to place an order for a project in *%s*.\n\n", location)
	b.WriteString("*REQUESTED MATERIALS:*\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s: %s units\n", l.Item, formatQty(l.Quantity))
		total = total.Add(l.Total)
	}
	fmt.Fprintf(&b, "\n*Target Budget:* %s\n", types.FormatNaira(total))
	b.WriteString("Please send your official invoice and bank details.\n\nRegards,\nSiteMate User")
	return b.String()
}

// WhatsAppLink builds a click-to-chat link. The phone number is used
// without its plus sign or spaces.
func WhatsAppLink(phone, message string) (string, bool) {
	clean := strings.Join(strings.Fields(strings.ReplaceAll(phone, "+", "")), "")
	if clean == "" {
		return "", false
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", clean, quote(message)), true
}

// EmailLink builds a mailto link with the order subject and body
func EmailLink(address string, location types.Location, message string) (string, bool) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", false
	}
	subject := fmt.Sprintf("Order Request - %s Project", location)
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", address, quote(subject), quote(message)), true
}

// quote percent-encodes s for a URL query value, spaces as %20
func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func formatQty(q float64) string {
	if q == math.Trunc(q) {
		return fmt.Sprintf("%.0f", q)
	}
	return fmt.Sprintf("%.1f", q)
}
