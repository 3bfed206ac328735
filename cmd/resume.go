package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/betonlab/mixopt/internal/opt"
	"github.com/betonlab/mixopt/internal/predict"
	"github.com/betonlab/mixopt/internal/store"
)

var (
	resumeDataDir     string
	resumeGenerations int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume an optimization from its checkpoint",
	Long: `Continues a checkpointed run: the saved best formulation seeds a fresh
population and the search runs for another batch of generations. The
objective and target of the original run cannot change on resume.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "", "Base directory for run persistence (default from config)")
	resumeCmd.Flags().IntVar(&resumeGenerations, "generations", 0, "Generations to run (default: same as the original run)")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	cfgFile, err := loadConfig()
	if err != nil {
		return err
	}

	dataDir := cfgFile.Server.DataDir
	if resumeDataDir != "" {
		dataDir = resumeDataDir
	}

	st, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	cp, err := st.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not usable: %w", err)
	}

	runConfig := cp.Config
	if resumeGenerations > 0 {
		runConfig.Generations = resumeGenerations
	}
	if err := cp.IsCompatible(runConfig); err != nil {
		return fmt.Errorf("cannot resume with changed settings: %w", err)
	}

	slog.Info("Resuming run",
		"job_id", jobID,
		"from_generation", cp.Generation,
		"best_fitness", cp.BestFitness,
	)

	bounds := cfgFile.MixBounds()
	objective := cfgFile.OptObjective()
	objective.CostWeight = runConfig.CostWeight
	objective.CO2Weight = runConfig.CO2Weight
	constraints := cfgFile.Constraints
	constraints.MinStrength = runConfig.MinStrength

	optCfg := cfgFile.Optimizer
	optCfg.PopulationSize = runConfig.PopSize
	optCfg.MaxGenerations = runConfig.Generations
	optCfg.Seed = runConfig.Seed
	optCfg.Start = &cp.Best

	// Continue the trace where the original run stopped
	tw, err := store.NewTraceWriter(dataDir, jobID, true)
	if err != nil {
		slog.Warn("trace disabled, writer unavailable", "job_id", jobID, "error", err)
	} else {
		defer tw.Close()
		base := cp.Generation
		optCfg.OnGeneration = func(generation int, best opt.Individual) {
			tw.Write(store.TraceEntry{
				Generation: base + generation,
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
	switch runConfig.Algorithm {
	case "", "ga":
		result, err = opt.Optimize(bounds, constraints, objective, optCfg, predictor)
	case "mayfly":
		result, err = opt.OptimizeMayfly(bounds, constraints, objective, optCfg, predictor)
	default:
		return fmt.Errorf("unknown algorithm: %s", runConfig.Algorithm)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	printResult(result, constraints.MinStrength, elapsed)

	if err := st.SaveResult(jobID, result); err != nil {
		slog.Warn("failed to persist result", "job_id", jobID, "error", err)
	}

	next := store.NewCheckpoint(
		jobID,
		result.Best.Formulation,
		result.Best.Fitness,
		result.Best.Feasible,
		cp.Generation+result.Generations,
		cp.Config,
	)
	if err := st.SaveCheckpoint(jobID, next); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Run resumed and checkpointed",
		"job_id", jobID,
		"generation", next.Generation,
		"best_fitness", next.BestFitness,
	)
	return nil
}
