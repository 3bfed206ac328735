package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/opt"
	"github.com/betonlab/mixopt/internal/predict"
	"github.com/betonlab/mixopt/internal/server"
	"github.com/betonlab/mixopt/internal/store"
)

var (
	optTargetStrength float64
	optCostWeight     float64
	optCO2Weight      float64
	optPopSize        int
	optGenerations    int
	optSeed           int64
	optWorkers        int
	optAlgorithm      string
	optStartPreset    string
	optOutPath        string
	optChartPath      string
	optCSVPath        string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a single optimization",
	Long: `Searches for the cheapest, lowest-carbon formulation that meets the
target strength and prints the best mix found. The result, convergence
chart and trace can optionally be written to files.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().Float64Var(&optTargetStrength, "strength", 0, "Target compressive strength in MPa (required unless set in config)")
	optimizeCmd.Flags().Float64Var(&optCostWeight, "cost-weight", 0, "Weight of material cost in the objective")
	optimizeCmd.Flags().Float64Var(&optCO2Weight, "co2-weight", 0, "Weight of embodied CO2 in the objective")
	optimizeCmd.Flags().IntVar(&optPopSize, "pop", 0, "Population size")
	optimizeCmd.Flags().IntVar(&optGenerations, "generations", 0, "Maximum generations")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 0, "Random seed")
	optimizeCmd.Flags().IntVar(&optWorkers, "workers", 0, "Parallel evaluation workers")
	optimizeCmd.Flags().StringVar(&optAlgorithm, "algorithm", "ga", "Search backend: ga or mayfly")
	optimizeCmd.Flags().StringVar(&optStartPreset, "start-preset", "", "Seed the search from a named preset")
	optimizeCmd.Flags().StringVar(&optOutPath, "out", "", "Write the full result as JSON")
	optimizeCmd.Flags().StringVar(&optChartPath, "chart", "", "Write a convergence chart as HTML")
	optimizeCmd.Flags().StringVar(&optCSVPath, "csv", "", "Write the per-generation trace as CSV")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfgFile, err := loadConfig()
	if err != nil {
		return err
	}

	bounds := cfgFile.MixBounds()
	objective := cfgFile.OptObjective()
	constraints := cfgFile.Constraints
	optCfg := cfgFile.Optimizer

	if optTargetStrength > 0 {
		constraints.MinStrength = optTargetStrength
	}
	if constraints.MinStrength <= 0 {
		return fmt.Errorf("a target strength is required (--strength or config)")
	}
	if optCostWeight > 0 {
		objective.CostWeight = optCostWeight
	}
	if optCO2Weight > 0 {
		objective.CO2Weight = optCO2Weight
	}
	if optPopSize > 0 {
		optCfg.PopulationSize = optPopSize
	}
	if optGenerations > 0 {
		optCfg.MaxGenerations = optGenerations
	}
	if cmd.Flags().Changed("seed") {
		optCfg.Seed = optSeed
	}
	if optWorkers > 0 {
		optCfg.Workers = optWorkers
	}

	if optStartPreset != "" {
		preset, ok := mix.PresetByName(optStartPreset)
		if !ok {
			return fmt.Errorf("unknown preset: %s", optStartPreset)
		}
		optCfg.Start = &preset.Formulation
	}

	var entries []store.TraceEntry
	if optChartPath != "" || optCSVPath != "" {
		optCfg.OnGeneration = func(generation int, best opt.Individual) {
			entries = append(entries, store.TraceEntry{
				Generation: generation,
				Fitness:    best.Fitness,
				Cost:       objective.Costs.Cost(best.Formulation),
				CO2:        objective.Emissions.CO2(best.Formulation),
				Feasible:   best.Feasible,
				Timestamp:  time.Now(),
			})
		}
	}

	predictor := predict.NewEmpiricalEngine()

	start := time.Now()
	var result *opt.Result
	switch optAlgorithm {
	case "ga":
		result, err = opt.Optimize(bounds, constraints, objective, optCfg, predictor)
	case "mayfly":
		result, err = opt.OptimizeMayfly(bounds, constraints, objective, optCfg, predictor)
	default:
		return fmt.Errorf("unknown algorithm: %s", optAlgorithm)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printResult(result, constraints.MinStrength, elapsed)

	if optOutPath != "" {
		if err := writeResultJSON(optOutPath, result); err != nil {
			return err
		}
		slog.Info("Result written", "path", optOutPath)
	}
	if optChartPath != "" {
		if err := writeTraceChart(optChartPath, entries); err != nil {
			return err
		}
		slog.Info("Chart written", "path", optChartPath)
	}
	if optCSVPath != "" {
		if err := writeTraceCSV(optCSVPath, entries); err != nil {
			return err
		}
		slog.Info("Trace written", "path", optCSVPath)
	}

	return nil
}

func printResult(result *opt.Result, minStrength float64, elapsed time.Duration) {
	f := result.Best.Formulation

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
	fmt.Printf("Predicted strength: %.1f MPa (target %.1f)\n", result.Best.Predicted.Strength, minStrength)
	fmt.Printf("Cost:               %.2f €/m³\n", result.Cost)
	fmt.Printf("CO2:                %.1f kg/m³\n", result.CO2)
	fmt.Printf("Water/binder:       %.3f\n", f.WaterBinderRatio())
	fmt.Printf("Feasible:           %t\n", result.Best.Feasible)
	if !result.Best.Feasible {
		fmt.Printf("Violation:          %.2f\n", result.Best.Violation)
	}
	fmt.Printf("Generations:        %d (%s, best at %d)\n", result.Generations, result.Reason, result.Generation)
	fmt.Printf("Elapsed:            %s\n", elapsed.Round(time.Millisecond))
	if result.PredictionFailures > 0 {
		fmt.Printf("Prediction failures: %d\n", result.PredictionFailures)
	}
}

func writeResultJSON(path string, result *opt.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func writeTraceChart(path string, entries []store.TraceEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return server.RenderTraceChart(f, "local run", entries)
}

func writeTraceCSV(path string, entries []store.TraceEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Write([]string{"generation", "fitness", "cost", "co2", "feasible"})
	for _, e := range entries {
		cw.Write([]string{
			strconv.Itoa(e.Generation),
			strconv.FormatFloat(e.Fitness, 'g', -1, 64),
			strconv.FormatFloat(e.Cost, 'g', -1, 64),
			strconv.FormatFloat(e.CO2, 'g', -1, 64),
			strconv.FormatBool(e.Feasible),
		})
	}
	cw.Flush()
	return cw.Error()
}
