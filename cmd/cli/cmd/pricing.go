// Package cmd - pricing commands
package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sitemate/adapters/pricing"
	"sitemate/core/boq"
	"sitemate/core/labor"
	"sitemate/core/timeline"
	"sitemate/core/types"
	"sitemate/internal/config"
	"sitemate/internal/errors"
)

var (
	materialFlags []string
	lookupTimeout time.Duration
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Convert engineering quantities and price them into a BOQ",
	Long: `Convert engineering quantities into market units and price them at
the site location. Sand and granite are given in tonnes, steel in kg,
cement in bags and blocks in pieces.

Examples:
  sitemate price -m Cement=120 -m "Sharp Sand=40" -m "12mm Iron Rod=850"
  sitemate price --location "Abuja, FCT" -m "9-inch Block=2400"`,
	RunE: runPrice,
}

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Inspect the material rate table",
}

var pricingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the static rate table, including any rates file overlay",
	RunE:  runPricingList,
}

var pricingLookupCmd = &cobra.Command{
	Use:   "lookup <material>",
	Short: "Resolve one material through the configured price source",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPricingLookup,
}

var pricingValidateCmd = &cobra.Command{
	Use:   "validate <rates-file>",
	Short: "Check an HCL rates file before pointing the config at it",
	Args:  cobra.ExactArgs(1),
	RunE:  runPricingValidate,
}

func init() {
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(pricingCmd)
	pricingCmd.AddCommand(pricingListCmd)
	pricingCmd.AddCommand(pricingLookupCmd)
	pricingCmd.AddCommand(pricingValidateCmd)

	priceCmd.Flags().StringArrayVarP(&materialFlags, "material", "m", nil, "material quantity as name=qty (repeatable)")
	priceCmd.Flags().StringVar(&startDate, "start", "", "schedule start date (YYYY-MM-DD, default today)")
	priceCmd.MarkFlagRequired("material")

	pricingLookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 10*time.Second, "timeout for the lookup")
}

// parseMaterials reads name=qty pairs
func parseMaterials(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		i := strings.LastIndex(p, "=")
		if i <= 0 {
			return nil, errors.InvalidInput("material", p)
		}
		name := strings.TrimSpace(p[:i])
		qty, err := strconv.ParseFloat(strings.TrimSpace(p[i+1:]), 64)
		if err != nil || name == "" {
			return nil, errors.InvalidInput("material", p)
		}
		out[name] += qty
	}
	return out, nil
}

func runPrice(cmd *cobra.Command, args []string) error {
	raw, err := parseMaterials(materialFlags)
	if err != nil {
		return err
	}
	start := time.Now()
	if startDate != "" {
		if start, err = time.Parse("2006-01-02", startDate); err != nil {
			return fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	loc := siteLocation()
	takeoff := boq.Convert(raw, loc)
	table, err := boq.Price(context.Background(), takeoff.Materials, loc, a.Resolver)
	if err != nil {
		return err
	}
	items := labor.Estimate(takeoff.Materials)
	phases := timeline.Schedule(takeoff.Materials, start)

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"boq":      table,
			"labor":    items,
			"timeline": phases,
		})
	}

	w := cmd.OutOrStdout()
	printBOQ(w, table)
	printLabor(w, items)
	printTimeline(w, phases)
	fmt.Fprintln(w, boq.LogisticsNote(loc))
	return nil
}

func runPricingList(cmd *cobra.Command, args []string) error {
	table, err := pricing.NewDefaultStaticTable(config.Get().Pricing.RatesPath)
	if err != nil {
		return err
	}
	rates := table.Rates()
	sort.SliceStable(rates, func(i, j int) bool {
		if rates[i].Category != rates[j].Category {
			return rates[i].Category < rates[j].Category
		}
		return rates[i].Name < rates[j].Name
	})

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), rates)
	}

	w := cmd.OutOrStdout()
	header(w, fmt.Sprintf("RATE TABLE (%d materials, base prices)", len(rates)))
	for _, r := range rates {
		label := fmt.Sprintf("[%s] %s", r.Category, r.Name)
		if r.Default {
			label += " (default)"
		}
		row(w, label, fmt.Sprintf("%s/%s", fmtBase(r.Price), r.Unit))
	}
	footer(w)
	return nil
}

func runPricingLookup(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	loc := siteLocation()
	q, err := a.Resolver.Resolve(ctx, query, loc)
	if err != nil {
		return err
	}
	if !q.Found() {
		return errors.Unresolved(query)
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), q)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", q.Name, q.Source)
	fmt.Fprintf(w, "  Base price:  %s\n", types.FormatNaira(q.BasePrice))
	fmt.Fprintf(w, "  At %s: %s\n", loc, types.FormatNaira(boq.UnitPrice(q.BasePrice, loc)))
	if q.Supplier != "" {
		fmt.Fprintf(w, "  Supplier:    %s\n", q.Supplier)
	}
	return nil
}

func runPricingValidate(cmd *cobra.Command, args []string) error {
	rates, err := pricing.LoadRates(args[0])
	if err != nil {
		return err
	}
	table := pricing.NewStaticTable(pricing.DefaultRates(), rates)
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d rates, %d materials after overlay\n", args[0], len(rates), table.Len())
	return nil
}

func fmtBase(price float64) string {
	return types.FormatNaira(decimal.NewFromFloat(price))
}
