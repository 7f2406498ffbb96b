// Package cmd - feasibility and foundation commands
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sitemate/core/feasibility"
	"sitemate/core/orchestrator"
	"sitemate/core/structural"
	"sitemate/core/types"
)

var (
	buildingType string
	floors       int
	landSize     float64

	designLoad float64
	sbc        float64
	requested  string
	building   string
	raftArea   float64
)

var feasibilityCmd = &cobra.Command{
	Use:   "feasibility",
	Short: "Quick cost range for a building type",
	Long: `Estimate a low/high cost range from the average build cost per m2 at
the site location, including site clearing when the land size is known.

Building types: "3-Bedroom Bungalow", "4-Bedroom Duplex",
"BQ / Boys Quarters", "Perimeter Fence (Plot)".`,
	RunE: runFeasibility,
}

var foundationCmd = &cobra.Command{
	Use:   "foundation",
	Short: "Size foundations",
}

var foundationStripCmd = &cobra.Command{
	Use:   "strip",
	Short: "Size a strip footing from a line load (kN/m)",
	RunE: func(cmd *cobra.Command, args []string) error {
		bearing, err := bearingCapacity(types.FoundationStrip)
		if err != nil {
			return err
		}
		d, err := structural.DesignStrip(designLoad, bearing)
		if err != nil {
			return err
		}
		return printDesign(cmd, d)
	},
}

var foundationPadCmd = &cobra.Command{
	Use:   "pad",
	Short: "Size a square pad from a column load (kN)",
	RunE: func(cmd *cobra.Command, args []string) error {
		bearing, err := bearingCapacity(types.FoundationPad)
		if err != nil {
			return err
		}
		d, err := structural.DesignPad(designLoad, bearing)
		if err != nil {
			return err
		}
		return printDesign(cmd, d)
	},
}

var foundationSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Choose a foundation type for the site soil",
	RunE:  runSelect,
}

func init() {
	rootCmd.AddCommand(feasibilityCmd)
	rootCmd.AddCommand(foundationCmd)
	foundationCmd.AddCommand(foundationStripCmd)
	foundationCmd.AddCommand(foundationPadCmd)
	foundationCmd.AddCommand(foundationSelectCmd)

	feasibilityCmd.Flags().StringVarP(&buildingType, "building", "b", string(feasibility.Bungalow3Bed), "building type")
	feasibilityCmd.Flags().IntVar(&floors, "floors", 1, "number of floors")
	feasibilityCmd.Flags().Float64Var(&landSize, "land", 0, "land size in m2 (0 if unknown)")

	for _, c := range []*cobra.Command{foundationStripCmd, foundationPadCmd, foundationSelectCmd} {
		c.Flags().Float64Var(&designLoad, "load", 0, "design load (kN/m for strips, kN for pads)")
		c.Flags().Float64Var(&sbc, "sbc", 0, "safe bearing capacity in kN/m2 (default from soil)")
	}
	foundationSelectCmd.Flags().StringVar(&requested, "type", "", "requested type (Strip, Pad, Raft)")
	foundationSelectCmd.Flags().StringVar(&building, "class", string(types.BuildingBungalow), "building class (bungalow, duplex)")
	foundationSelectCmd.Flags().Float64Var(&raftArea, "plan-area", orchestrator.DefaultPlanAreaM2, "plan area in m2 used to size a raft")
}

func runFeasibility(cmd *cobra.Command, args []string) error {
	loc := siteLocation()
	result, err := feasibility.Estimate(feasibility.Request{
		Location:    loc,
		Building:    feasibility.BuildingType(buildingType),
		Floors:      floors,
		LandSizeSqm: landSize,
	})
	if err != nil {
		return err
	}

	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	header(w, fmt.Sprintf("FEASIBILITY - %s, %s", buildingType, loc))
	if result.LandTooSmall {
		row(w, "Land too small", fmt.Sprintf("%.0f m2", landSize))
	} else {
		row(w, "Low estimate", types.FormatNaira(result.Low))
		row(w, "High estimate", types.FormatNaira(result.High))
		if !result.SitePrep.IsZero() {
			row(w, "Site preparation (included)", types.FormatNaira(result.SitePrep))
		}
	}
	footer(w)
	fmt.Fprintln(w, result.Details)
	printWarnings(w, result.Warnings)
	return nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	soilType, err := siteSoil()
	if err != nil {
		return err
	}
	ctx := structural.SoilFor(soilType)
	if sbc > 0 {
		ctx.BearingCapacityKPa = sbc
	}
	sel, err := structural.SelectFoundation(structural.SelectionRequest{
		Requested:  types.FoundationType(requested),
		Soil:       ctx,
		Building:   types.BuildingClass(building),
		PlanAreaM2: raftArea,
		LoadKn:     designLoad,
	})
	if err != nil {
		return err
	}
	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), sel)
	}
	fmt.Fprintln(cmd.OutOrStdout(), orchestrator.EngineNote(sel))
	if sel.Reason != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Reason: %s\n", sel.Reason)
	}
	return nil
}

func bearingCapacity(t types.FoundationType) (float64, error) {
	s, err := siteSoil()
	if err != nil {
		return 0, err
	}
	if err := structural.CheckSoil(s, t); err != nil {
		return 0, err
	}
	if sbc > 0 {
		return sbc, nil
	}
	return structural.DefaultBearingCapacity(s), nil
}

func printDesign(cmd *cobra.Command, d types.FoundationDesign) error {
	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), d)
	}
	w := cmd.OutOrStdout()
	header(w, fmt.Sprintf("%s FOUNDATION", d.Type))
	row(w, "Plan", d.Plan.String())
	row(w, "Depth", fmt.Sprintf("%d mm", d.DepthMm))
	row(w, "Concrete ("+d.VolumeBasis+")", fmt.Sprintf("%.3f m3", d.ConcreteVolumeM3))
	row(w, "Service load", fmt.Sprintf("%.1f kN", d.ServiceLoadKn))
	footer(w)
	fmt.Fprintf(w, "Reinforcement: %s\n", d.ReinforcementSpec)
	return nil
}
