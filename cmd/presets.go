package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/betonlab/mixopt/internal/mix"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in reference formulations",
	RunE:  runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	cfgFile, err := loadConfig()
	if err != nil {
		return err
	}
	costs := cfgFile.CostTable()
	emissions := cfgFile.EmissionTable()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCLASS\tEXPOSURE\tW/B\tCOST €/m³\tCO2 kg/m³\tDESCRIPTION")
	for _, p := range mix.Presets() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.1f\t%s\n",
			p.Name,
			p.Class,
			p.Exposure,
			p.Formulation.WaterBinderRatio(),
			costs.Cost(p.Formulation),
			emissions.CO2(p.Formulation),
			p.Description,
		)
	}
	return w.Flush()
}
