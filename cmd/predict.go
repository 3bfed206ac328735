package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
)

var (
	predPreset   string
	predCement   float64
	predSlag     float64
	predFlyAsh   float64
	predWater    float64
	predSP       float64
	predCoarse   float64
	predFine     float64
	predAge      float64
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict properties of a single formulation",
	Long: `Runs the property oracle on one formulation, given either as a named
preset or as explicit dosages, and prints the predicted properties
alongside cost, CO2 and the derived mix ratios.`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predPreset, "preset", "", "Evaluate a named preset instead of explicit dosages")
	predictCmd.Flags().Float64Var(&predCement, "cement", 0, "Cement dosage in kg/m³")
	predictCmd.Flags().Float64Var(&predSlag, "slag", 0, "Blast furnace slag dosage in kg/m³")
	predictCmd.Flags().Float64Var(&predFlyAsh, "fly-ash", 0, "Fly ash dosage in kg/m³")
	predictCmd.Flags().Float64Var(&predWater, "water", 0, "Water dosage in kg/m³")
	predictCmd.Flags().Float64Var(&predSP, "superplasticizer", 0, "Superplasticizer dosage in kg/m³")
	predictCmd.Flags().Float64Var(&predCoarse, "coarse", 0, "Coarse aggregate dosage in kg/m³")
	predictCmd.Flags().Float64Var(&predFine, "fine", 0, "Fine aggregate dosage in kg/m³")
	predictCmd.Flags().Float64Var(&predAge, "age", 28, "Curing age in days")

	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfgFile, err := loadConfig()
	if err != nil {
		return err
	}

	var f mix.Formulation
	if predPreset != "" {
		preset, ok := mix.PresetByName(predPreset)
		if !ok {
			return fmt.Errorf("unknown preset: %s", predPreset)
		}
		f = preset.Formulation
	} else {
		f = mix.Formulation{
			Cement:           predCement,
			Slag:             predSlag,
			FlyAsh:           predFlyAsh,
			Water:            predWater,
			Superplasticizer: predSP,
			CoarseAggregate:  predCoarse,
			FineAggregate:    predFine,
			Age:              predAge,
		}
		if f.TotalBinder() <= 0 {
			return fmt.Errorf("formulation has no binder; give --cement (or --slag/--fly-ash) or use --preset")
		}
	}

	props, err := predict.NewEmpiricalEngine().Predict(f)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tDOSAGE")
	for _, c := range mix.Components() {
		unit := "kg/m³"
		if c == mix.Age {
			unit = "days"
		}
		fmt.Fprintf(w, "%s\t%.1f %s\n", c, f.Get(c), unit)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Strength:           %.1f MPa\n", props.Strength)
	fmt.Printf("Chloride diffusion: %.2f 1e-12 m²/s\n", props.ChlorideDiffusion)
	fmt.Printf("Carbonation depth:  %.1f mm\n", props.CarbonationDepth)
	fmt.Printf("Confidence:         %.2f\n", props.Confidence)
	fmt.Println()
	fmt.Printf("Cost:               %.2f €/m³\n", cfgFile.CostTable().Cost(f))
	fmt.Printf("CO2:                %.1f kg/m³\n", cfgFile.EmissionTable().CO2(f))
	fmt.Printf("Water/binder:       %.3f\n", f.WaterBinderRatio())
	fmt.Printf("Substitution:       %.0f%%\n", f.SubstitutionFraction()*100)
	fmt.Printf("Aggregate ratio:    %.2f\n", f.AggregateRatio())

	return nil
}
