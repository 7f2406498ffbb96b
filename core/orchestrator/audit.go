package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// Audit asks the completion service for a quantity surveyor review of a
// priced BOQ
func (o *Orchestrator) Audit(ctx context.Context, table *types.BOQTable) (string, error) {
	if table.IsEmpty() {
		return "", errors.InvalidInput("boq", "empty")
	}
	prompt := fmt.Sprintf(auditPrompt, table.Location, SummariseBOQ(table))
	return o.complete(ctx, prompt)
}

// SummariseBOQ renders a table as aligned plain text
func SummariseBOQ(table *types.BOQTable) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Item\tQty\tUnit\tUnit Price\tTotal")
	for _, l := range table.Lines {
		fmt.Fprintf(w, "%s\t%.0f\t%s\t%s\t%s\n", l.Item, l.Quantity, l.Unit,
			types.FormatNaira(l.UnitPrice), types.FormatNaira(l.Total))
	}
	fmt.Fprintf(w, "TOTAL\t\t\t\t%s\n", types.FormatNaira(table.Total()))
	_ = w.Flush()
	return b.String()
}
