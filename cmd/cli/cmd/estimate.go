// Package cmd - estimate command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitemate/adapters/storage"
	"sitemate/core/orchestrator"
	"sitemate/core/scenario"
	"sitemate/core/types"
	"sitemate/internal/logging"
)

var (
	planArea      float64
	startDate     string
	steelVariance float64
	concreteGrade string
	saveAs        string
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate <request>",
	Short: "Produce an engineering report and priced BOQ from a free-text request",
	Long: `Send a free-text request through the estimation pipeline: intent
detection, foundation sizing, live market context and the completion
service. The returned BOQ is priced for the site location.

Examples:
  sitemate estimate "Design a strip foundation for a 3 bedroom bungalow"
  sitemate estimate --soil clay "Budget for a duplex"
  sitemate estimate --grade M25 --steel 10 --save "Lekki Duplex" "4 bedroom duplex"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().Float64Var(&planArea, "plan-area", 0, "plan area in m2 used to size a raft")
	estimateCmd.Flags().StringVar(&startDate, "start", "", "schedule start date (YYYY-MM-DD, default today)")
	estimateCmd.Flags().Float64Var(&steelVariance, "steel", 0, "steel price variance in percent (-10 to 20)")
	estimateCmd.Flags().StringVar(&concreteGrade, "grade", "", "concrete grade scenario (M20, M25)")
	estimateCmd.Flags().StringVar(&saveAs, "save", "", "save the priced BOQ under this project name")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	startTime := time.Now()

	soilType, err := siteSoil()
	if err != nil {
		return err
	}
	var start time.Time
	if startDate != "" {
		if start, err = time.Parse("2006-01-02", startDate); err != nil {
			return fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
	}
	adj := types.ScenarioAdjustment{SteelVariancePct: steelVariance, ConcreteGrade: types.ConcreteGrade(strings.ToUpper(concreteGrade))}
	if err := scenario.Validate(adj); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	loc := siteLocation()
	logging.Info("Starting estimation", logging.Location(loc.String()))

	resp, err := a.Orchestrator.Handle(ctx, orchestrator.Request{
		Text:       strings.Join(args, " "),
		Location:   loc,
		Soil:       soilType,
		PlanAreaM2: planArea,
		StartDate:  start,
	})
	if err != nil {
		if resp != nil && !jsonOutput() {
			printWarnings(cmd.ErrOrStderr(), resp.Warnings)
		}
		return err
	}

	var adjusted *types.BOQTable
	if resp.BOQ != nil && !adj.IsNeutral() {
		if adjusted, err = scenario.Apply(resp.BOQ, adj); err != nil {
			return err
		}
	}

	if saveAs != "" && resp.BOQ != nil {
		p := &storage.Project{
			Name:      saveAs,
			Location:  loc,
			Soil:      resp.Soil.DeclaredType,
			BOQ:       *resp.BOQ,
			Narrative: resp.Text,
		}
		if err := a.Store.Save(ctx, p); err != nil {
			return err
		}
		logging.Info("Project saved", logging.Project(p.Name), zap.String("id", p.ID))
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), struct {
			*orchestrator.Response
			Scenario *types.BOQTable `json:"scenario,omitempty"`
		}{resp, adjusted})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Site: %s | Soil: %s\n", loc, resp.Soil.Label())
	if resp.Foundation != nil {
		fmt.Fprintln(w, orchestrator.EngineNote(*resp.Foundation))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, resp.Text)
	fmt.Fprintln(w)

	if resp.BOQ == nil {
		printWarnings(w, resp.Warnings)
		return nil
	}
	printBOQ(w, resp.BOQ)
	printLabor(w, resp.Labor)
	printTimeline(w, resp.Timeline)
	if adjusted != nil {
		fmt.Fprintf(w, "\nScenario (steel %+.0f%%, %s): %s (%s)\n",
			adj.SteelVariancePct, orGrade(adj.ConcreteGrade),
			types.FormatNaira(adjusted.Total()),
			types.FormatNaira(scenario.Delta(resp.BOQ, adjusted)))
	}
	if saveAs != "" {
		fmt.Fprintf(w, "\nSaved as %q\n", saveAs)
	}
	fmt.Fprintf(w, "\nEstimation completed in %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func orGrade(g types.ConcreteGrade) types.ConcreteGrade {
	if g == "" {
		return types.GradeM20
	}
	return g
}
