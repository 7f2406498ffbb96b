// Package cmd - saved project commands
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sitemate/adapters/export/excel"
	"sitemate/adapters/export/pdf"
	"sitemate/core/procurement"
)

var (
	exportDir     string
	supplierName  string
	supplierPhone string
	supplierEmail string
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage saved projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved projects, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.Store.List(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput() {
			return writeJSON(cmd.OutOrStdout(), list)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved projects.")
			return nil
		}
		w := cmd.OutOrStdout()
		header(w, fmt.Sprintf("SAVED PROJECTS (%d)", len(list)))
		for _, s := range list {
			row(w, fmt.Sprintf("%s - %s", s.Name, s.Location), s.Total)
		}
		footer(w)
		return nil
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Store.Load(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return writeJSON(cmd.OutOrStdout(), p)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s | %s | %s | saved %s\n\n", p.Name, p.Location, p.Soil, p.UpdatedAt.Format("02 Jan 2006 15:04"))
		if p.Narrative != "" {
			fmt.Fprintln(w, p.Narrative)
			fmt.Fprintln(w)
		}
		printBOQ(w, &p.BOQ)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
		return nil
	},
}

var projectsExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Write the project BOQ as an Excel workbook and a PDF report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Store.Load(context.Background(), args[0])
		if err != nil {
			return err
		}
		if err := os.MkdirAll(exportDir, 0755); err != nil {
			return err
		}

		book, err := excel.BOQWorkbook(p)
		if err != nil {
			return err
		}
		report, err := pdf.Report(p, p.Narrative)
		if err != nil {
			return err
		}

		base := filepath.Join(exportDir, "SiteMate_"+fileSafe(p.Name))
		for path, data := range map[string][]byte{base + ".xlsx": book, base + ".pdf": report} {
			if err := os.WriteFile(path, data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
		}
		return nil
	},
}

var projectsOrderCmd = &cobra.Command{
	Use:   "order <name>",
	Short: "Draft a supplier order for the project's priced lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Store.Load(context.Background(), args[0])
		if err != nil {
			return err
		}
		msg := procurement.OrderMessage(p.Location, &p.BOQ, supplierName)
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, msg)
		if msg == procurement.NoItems {
			return nil
		}
		if link, ok := procurement.WhatsAppLink(supplierPhone, msg); ok {
			fmt.Fprintf(w, "\nWhatsApp: %s\n", link)
		}
		if link, ok := procurement.EmailLink(supplierEmail, p.Location, msg); ok {
			fmt.Fprintf(w, "Email:    %s\n", link)
		}
		return nil
	},
}

var projectsAuditCmd = &cobra.Command{
	Use:   "audit <name>",
	Short: "Ask the completion service for a quantity surveyor review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(context.Background(), a.Config.Completion.Timeout())
		defer cancel()

		p, err := a.Store.Load(ctx, args[0])
		if err != nil {
			return err
		}
		review, err := a.Orchestrator.Audit(ctx, &p.BOQ)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), review)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsExportCmd)
	projectsCmd.AddCommand(projectsOrderCmd)
	projectsCmd.AddCommand(projectsAuditCmd)

	projectsExportCmd.Flags().StringVarP(&exportDir, "output-dir", "o", ".", "directory for the exported files")
	projectsOrderCmd.Flags().StringVar(&supplierName, "supplier", "Supplier", "supplier name used in the greeting")
	projectsOrderCmd.Flags().StringVar(&supplierPhone, "phone", "", "supplier phone for a WhatsApp link")
	projectsOrderCmd.Flags().StringVar(&supplierEmail, "email", "", "supplier email for a mailto link")
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
