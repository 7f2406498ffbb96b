// Package cmd - supplier marketplace commands
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sitemate/adapters/storage"
	"sitemate/core/site"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

var (
	vendorCompany   string
	vendorLocation  string
	vendorPhone     string
	vendorEmail     string
	vendorMaterials []string
	bidSupplier     string
	bidAmount       string
	bidPhone        string
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Supplier directory, open tenders and bids",
}

var suppliersCmd = &cobra.Command{
	Use:   "suppliers [query]",
	Short: "Search registered suppliers by location, company or material",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarket(func(ctx context.Context, l storage.Ledger) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			ss, err := l.Suppliers(ctx, query)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), ss)
			}
			w := cmd.OutOrStdout()
			if len(ss) == 0 {
				fmt.Fprintln(w, "No suppliers found.")
				return nil
			}
			header(w, fmt.Sprintf("SUPPLIERS (%d)", len(ss)))
			for _, s := range ss {
				row(w, fmt.Sprintf("%s - %s", s.Company, s.Location), fmt.Sprintf("%s ★%.1f", s.Phone, s.Rating))
			}
			footer(w)
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Add a supplier to the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMarket(func(ctx context.Context, l storage.Ledger) error {
			s := site.Supplier{
				Company:   vendorCompany,
				Location:  types.Location(vendorLocation),
				Phone:     vendorPhone,
				Email:     vendorEmail,
				Materials: vendorMaterials,
			}
			if err := l.RegisterSupplier(ctx, &s); err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s (%s)\n", s.Company, s.Location)
			return nil
		})
	},
}

var tendersCmd = &cobra.Command{
	Use:   "tenders",
	Short: "List saved projects open for bids, filtered by --location",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ts, err := storage.Tenders(context.Background(), a.Store, location)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return writeJSON(cmd.OutOrStdout(), ts)
		}
		w := cmd.OutOrStdout()
		if len(ts) == 0 {
			fmt.Fprintln(w, "No open tenders.")
			return nil
		}
		header(w, fmt.Sprintf("OPEN TENDERS (%d)", len(ts)))
		for _, t := range ts {
			row(w, fmt.Sprintf("%s - %s (%d items)", t.Project, t.Location, t.Items), types.FormatNaira(t.EstValue))
		}
		footer(w)
		return nil
	},
}

var bidCmd = &cobra.Command{
	Use:   "bid <project>",
	Short: "Submit a supplier's bid on a tender",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(strings.TrimSpace(bidAmount))
		if err != nil {
			return errors.InvalidInput("amount", bidAmount)
		}
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			b := site.Bid{Project: p.Name, Supplier: bidSupplier, Amount: amount, Phone: bidPhone}
			if err := storage.SubmitRegisteredBid(ctx, l, &b); err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Bid %s submitted: %s for %s\n", b.ID, types.FormatNaira(b.Amount), b.Project)
			return nil
		})
	},
}

var bidsCmd = &cobra.Command{
	Use:   "bids [project]",
	Short: "List a project's bids, or a supplier's with --supplier",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && bidSupplier == "" {
			return errors.InvalidInput("project", "empty")
		}
		return withMarket(func(ctx context.Context, l storage.Ledger) error {
			var (
				bids []site.Bid
				err  error
			)
			if len(args) == 1 {
				bids, err = l.Bids(ctx, args[0])
			} else {
				bids, err = l.SupplierBids(ctx, bidSupplier)
			}
			if err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), bids)
			}
			w := cmd.OutOrStdout()
			if len(bids) == 0 {
				fmt.Fprintln(w, "No bids.")
				return nil
			}
			for _, b := range bids {
				fmt.Fprintf(w, "%s  %-24s %-24s %-9s %s\n", b.ID, truncate(b.Supplier, 24), truncate(b.Project, 24), b.Status, types.FormatNaira(b.Amount))
			}
			return nil
		})
	},
}

func decideCmd(status site.BidStatus, use string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <bid-id>",
		Short: fmt.Sprintf("Mark a pending bid %s", strings.ToLower(string(status))),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMarket(func(ctx context.Context, l storage.Ledger) error {
				b, err := l.DecideBid(ctx, args[0], status)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return writeJSON(cmd.OutOrStdout(), b)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Bid from %s %s\n", b.Supplier, strings.ToLower(string(b.Status)))
				return nil
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(marketCmd)
	marketCmd.AddCommand(suppliersCmd, registerCmd, tendersCmd, bidCmd, bidsCmd)
	marketCmd.AddCommand(decideCmd(site.BidAccepted, "accept"), decideCmd(site.BidRejected, "reject"))

	registerCmd.Flags().StringVar(&vendorCompany, "company", "", "company name")
	registerCmd.Flags().StringVar(&vendorLocation, "site", "", "where the supplier trades (e.g. \"Ibadan, Oyo\")")
	registerCmd.Flags().StringVar(&vendorPhone, "phone", "", "contact phone")
	registerCmd.Flags().StringVar(&vendorEmail, "email", "", "contact email")
	registerCmd.Flags().StringSliceVar(&vendorMaterials, "materials", nil, "materials supplied, comma separated")

	bidCmd.Flags().StringVar(&bidSupplier, "supplier", "", "registered supplier company")
	bidCmd.Flags().StringVar(&bidAmount, "amount", "", "bid amount in naira")
	bidCmd.Flags().StringVar(&bidPhone, "phone", "", "contact phone for the bid")
	bidsCmd.Flags().StringVar(&bidSupplier, "supplier", "", "list this supplier's bids instead")
}

// withMarket runs fn against the configured ledger
func withMarket(fn func(ctx context.Context, l storage.Ledger) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	l, err := appLedger(a)
	if err != nil {
		return err
	}
	return fn(context.Background(), l)
}
