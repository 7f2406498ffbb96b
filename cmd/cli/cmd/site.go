// Package cmd - site ledger commands
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"sitemate/adapters/export/pdf"
	"sitemate/adapters/storage"
	"sitemate/core/site"
	"sitemate/core/types"
	"sitemate/internal/app"
	"sitemate/internal/errors"
)

var (
	expenseItem     string
	expenseAmount   string
	expenseCategory string
	expenseNote     string
	entryDate       string
	stockItem       string
	stockQty        float64
	stockUnit       string
	diaryWeather    string
	diaryLabor      []string
	diaryWork       string
	diaryIssues     string
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Track spending, stock and daily reports for a saved project",
}

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"expenses"},
	Short:   "Log and review project expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <project>",
	Short: "Log an expense against a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			amount, err := decimal.NewFromString(strings.TrimSpace(expenseAmount))
			if err != nil {
				return errors.InvalidInput("amount", expenseAmount)
			}
			e := site.Expense{
				Project:  p.Name,
				Item:     expenseItem,
				Amount:   amount,
				Category: site.ExpenseCategory(expenseCategory),
				Note:     expenseNote,
			}
			if e.Date, err = parseDay(entryDate); err != nil {
				return err
			}
			if err := l.AddExpense(ctx, &e); err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged %s: %s (%s)\n", e.Item, types.FormatNaira(e.Amount), e.Category)
			return nil
		})
	},
}

var expenseListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "Show a project's expenses against its BOQ budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			es, err := l.Expenses(ctx, p.Name)
			if err != nil {
				return err
			}
			health := site.FinancialHealth(p.BOQ.Total(), es)
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"expenses": es, "health": health})
			}
			w := cmd.OutOrStdout()
			header(w, fmt.Sprintf("EXPENSES - %s", p.Name))
			for _, e := range es {
				row(w, fmt.Sprintf("%s %s (%s)", e.Date.Format(site.DateLayout), e.Item, e.Category), types.FormatNaira(e.Amount))
			}
			fmt.Fprintln(w, rule)
			row(w, "Planned budget", types.FormatNaira(health.Planned))
			row(w, "Spent", types.FormatNaira(health.Spent))
			row(w, fmt.Sprintf("Remaining (%.1f%% used)", health.UsedPct), types.FormatNaira(health.Remaining))
			footer(w)
			if health.OverBudget {
				fmt.Fprintln(w, "⚠️  Spending has passed the estimated budget.")
			}
			return nil
		})
	},
}

var expenseReportCmd = &cobra.Command{
	Use:   "report <project>",
	Short: "Write the expense log as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			es, err := l.Expenses(ctx, p.Name)
			if err != nil {
				return err
			}
			data, err := pdf.ExpenseLog(p.Name, site.FinancialHealth(p.BOQ.Total(), es), es)
			if err != nil {
				return err
			}
			return writeExport(cmd, p.Name+"_Expenses.pdf", data)
		})
	},
}

var stockCmd = &cobra.Command{
	Use:     "stock",
	Aliases: []string{"inventory"},
	Short:   "Record deliveries and usage of materials on site",
}

func stockMoveCmd(op site.StockOperation, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(op) + " <project>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
				item, err := l.MoveStock(ctx, p.Name, site.StockRequest{
					Item:      stockItem,
					Quantity:  stockQty,
					Unit:      stockUnit,
					Operation: op,
				})
				if err != nil {
					return err
				}
				if jsonOutput() {
					return writeJSON(cmd.OutOrStdout(), item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %s %s. Balance: %s %s\n",
					op.Label(), formatQty(stockQty), item.Item, formatQty(item.Quantity), item.Unit)
				return nil
			})
		},
	}
}

var stockListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "Show current stock balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			stock, err := l.Stock(ctx, p.Name)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), stock)
			}
			w := cmd.OutOrStdout()
			if len(stock) == 0 {
				fmt.Fprintln(w, "No stock recorded.")
				return nil
			}
			header(w, fmt.Sprintf("STOCK - %s", p.Name))
			for _, s := range stock {
				row(w, s.Item, formatQty(s.Quantity)+" "+s.Unit)
			}
			footer(w)
			return nil
		})
	},
}

var stockReportCmd = &cobra.Command{
	Use:   "report <project>",
	Short: "Write the stock balances and movement log as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			stock, err := l.Stock(ctx, p.Name)
			if err != nil {
				return err
			}
			log, err := l.StockLog(ctx, p.Name)
			if err != nil {
				return err
			}
			data, err := pdf.StockReport(p.Name, stock, log)
			if err != nil {
				return err
			}
			return writeExport(cmd, p.Name+"_Inventory.pdf", data)
		})
	},
}

var diaryCmd = &cobra.Command{
	Use:   "diary",
	Short: "File and read daily site reports",
}

var diaryAddCmd = &cobra.Command{
	Use:   "add <project>",
	Short: "File today's site report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		labor, err := parseLabor(diaryLabor)
		if err != nil {
			return err
		}
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			d := site.DiaryEntry{
				Project:  p.Name,
				Date:     entryDate,
				Weather:  diaryWeather,
				Labor:    labor,
				WorkDone: diaryWork,
				Issues:   diaryIssues,
			}
			if err := l.AddDiary(ctx, &d); err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Diary filed for %s (%d on site)\n", d.Date, d.Headcount())
			return nil
		})
	},
}

var diaryListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "Read a project's diary, newest day first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(args[0], func(ctx context.Context, l storage.Ledger, p *storage.Project) error {
			ds, err := l.Diary(ctx, p.Name)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), ds)
			}
			w := cmd.OutOrStdout()
			if len(ds) == 0 {
				fmt.Fprintln(w, "No diary entries.")
				return nil
			}
			for _, d := range ds {
				fmt.Fprintf(w, "%s | %s | %s\n", d.Date, d.Weather, d.LaborSummary())
				fmt.Fprintf(w, "  Work:   %s\n", d.WorkDone)
				if d.Issues != "" {
					fmt.Fprintf(w, "  Issues: %s\n", d.Issues)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(siteCmd)
	siteCmd.AddCommand(expenseCmd, stockCmd, diaryCmd)

	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseReportCmd)
	expenseAddCmd.Flags().StringVar(&expenseItem, "item", "", "what the money was spent on")
	expenseAddCmd.Flags().StringVar(&expenseAmount, "amount", "", "amount in naira")
	expenseAddCmd.Flags().StringVar(&expenseCategory, "category", "", "Materials, Labor, Logistics, Permits or Misc")
	expenseAddCmd.Flags().StringVar(&expenseNote, "note", "", "optional note")
	expenseAddCmd.Flags().StringVar(&entryDate, "date", "", "date as YYYY-MM-DD (default today)")
	expenseReportCmd.Flags().StringVarP(&exportDir, "output-dir", "o", ".", "directory for the report")

	stockIn := stockMoveCmd(site.StockIn, "Record a delivery to site")
	stockOut := stockMoveCmd(site.StockOut, "Record material drawn for use")
	for _, c := range []*cobra.Command{stockIn, stockOut} {
		c.Flags().StringVar(&stockItem, "item", "", "material name")
		c.Flags().Float64Var(&stockQty, "qty", 0, "quantity moved")
		c.Flags().StringVar(&stockUnit, "unit", "", "unit (default by material)")
	}
	stockCmd.AddCommand(stockIn, stockOut, stockListCmd, stockReportCmd)
	stockReportCmd.Flags().StringVarP(&exportDir, "output-dir", "o", ".", "directory for the report")

	diaryCmd.AddCommand(diaryAddCmd, diaryListCmd)
	diaryAddCmd.Flags().StringVar(&entryDate, "date", "", "date as YYYY-MM-DD (default today)")
	diaryAddCmd.Flags().StringVar(&diaryWeather, "weather", "Sunny", "weather on site")
	diaryAddCmd.Flags().StringArrayVar(&diaryLabor, "labor", nil, "trade=count, repeatable (e.g. Mason=4)")
	diaryAddCmd.Flags().StringVar(&diaryWork, "work", "", "work done today")
	diaryAddCmd.Flags().StringVar(&diaryIssues, "issues", "", "issues or delays")
}

// withLedger opens the app, loads the named project and runs fn against
// the configured ledger.
func withLedger(project string, fn func(ctx context.Context, l storage.Ledger, p *storage.Project) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	l, err := appLedger(a)
	if err != nil {
		return err
	}
	ctx := context.Background()
	p, err := a.Store.Load(ctx, project)
	if err != nil {
		return err
	}
	return fn(ctx, l, p)
}

func appLedger(a *app.App) (storage.Ledger, error) {
	if a.Ledger == nil {
		return nil, errors.Config("site ledger not available for this storage backend")
	}
	return a.Ledger, nil
}

func parseDay(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(site.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errors.InvalidInput("date", raw)
	}
	return d, nil
}

func parseLabor(pairs []string) (map[string]int, error) {
	out := make(map[string]int, len(pairs))
	for _, p := range pairs {
		i := strings.LastIndex(p, "=")
		if i <= 0 {
			return nil, errors.InvalidInput("labor", p)
		}
		trade := strings.TrimSpace(p[:i])
		n, err := strconv.Atoi(strings.TrimSpace(p[i+1:]))
		if err != nil || trade == "" || n < 0 {
			return nil, errors.InvalidInput("labor", p)
		}
		out[trade] += n
	}
	return out, nil
}

func writeExport(cmd *cobra.Command, name string, data []byte) error {
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(exportDir, "SiteMate_"+fileSafe(strings.TrimSuffix(name, filepath.Ext(name)))+filepath.Ext(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
	return nil
}
