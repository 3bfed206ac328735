package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/opt"
	"github.com/betonlab/mixopt/internal/predict"
	"github.com/betonlab/mixopt/internal/store"
)

// runJob executes an optimization job in the background. Progress flows
// through the driver's per-generation hook into the job state, and from
// there to SSE clients via the throttled monitor. When runStore is set the
// trace is streamed to trace.jsonl and the final result saved as
// result.json; a positive CheckpointInterval additionally snapshots the
// incumbent best on a timer.
func runJob(ctx context.Context, jm *JobManager, runStore store.Store, baseDir string, predictor predict.Predictor, bounds mix.Bounds, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	}); err != nil {
		return err
	}

	slog.Info("Starting job",
		"job_id", jobID,
		"algorithm", job.Config.Algorithm,
		"min_strength", job.Config.MinStrength,
	)

	constraints := opt.Constraints{MinStrength: job.Config.MinStrength}

	objective := opt.DefaultObjective()
	objective.CostWeight = job.Config.CostWeight
	objective.CO2Weight = job.Config.CO2Weight

	cfg := opt.DefaultConfig()
	cfg.PopulationSize = job.Config.PopSize
	cfg.MaxGenerations = job.Config.Generations
	cfg.Seed = job.Config.Seed
	// The default elite count assumes the default population size and must
	// stay below the job's actual one.
	if cfg.ElitismCount >= cfg.PopulationSize {
		cfg.ElitismCount = cfg.PopulationSize - 1
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	var tw *store.TraceWriter
	if baseDir != "" {
		var err error
		tw, err = store.NewTraceWriter(baseDir, jobID, false)
		if err != nil {
			slog.Warn("trace disabled, writer unavailable", "job_id", jobID, "error", err)
		} else {
			defer tw.Close()
		}
	}

	// The hook runs on the driver goroutine: update the job state, append
	// the trace line, and let the monitor goroutine do the broadcasting.
	cfg.OnGeneration = func(generation int, best opt.Individual) {
		cost := objective.Costs.Cost(best.Formulation)
		co2 := objective.Emissions.CO2(best.Formulation)

		jm.UpdateJob(jobID, func(j *Job) {
			f := best.Formulation
			j.Best = &f
			j.BestFitness = best.Fitness
			j.Feasible = best.Feasible
			j.Cost = cost
			j.CO2 = co2
			j.Generation = generation
		})

		if tw != nil {
			entry := store.TraceEntry{
				Generation: generation,
				Fitness:    best.Fitness,
				Cost:       cost,
				CO2:        co2,
				Feasible:   best.Feasible,
				Timestamp:  time.Now(),
			}
			if err := tw.Write(entry); err != nil {
				slog.Warn("failed to write trace entry", "job_id", jobID, "error", err)
			} else {
				tw.Flush()
			}
		}
	}

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, progressDone)

	checkpointDone := make(chan struct{})
	if runStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, runStore, jobID, checkpointDone)
	} else {
		close(checkpointDone)
	}

	start := time.Now()
	var result *opt.Result
	var err error

	switch job.Config.Algorithm {
	case "", "ga":
		result, err = opt.Optimize(bounds, constraints, objective, cfg, predictor)
	case "mayfly":
		result, err = opt.OptimizeMayfly(bounds, constraints, objective, cfg, predictor)
	default:
		err = fmt.Errorf("unknown algorithm: %s", job.Config.Algorithm)
	}

	close(progressDone)
	if runStore != nil && job.Config.CheckpointInterval > 0 {
		close(checkpointDone)
	}

	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	if runStore != nil {
		if serr := runStore.SaveResult(jobID, result); serr != nil {
			slog.Warn("failed to persist result", "job_id", jobID, "error", serr)
		}
	}

	endTime := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		f := result.Best.Formulation
		j.State = StateCompleted
		j.Best = &f
		j.BestFitness = result.Best.Fitness
		j.Feasible = result.Best.Feasible
		j.Cost = result.Cost
		j.CO2 = result.CO2
		j.Generation = result.Generations
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", time.Since(start),
		"reason", result.Reason,
		"best_fitness", result.Best.Fitness,
		"feasible", result.Best.Feasible,
		"cost", result.Cost,
		"co2", result.CO2,
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:       jobID,
		State:       StateCompleted,
		Generation:  result.Generations,
		BestFitness: result.Best.Fitness,
		Feasible:    result.Best.Feasible,
		Cost:        result.Cost,
		CO2:         result.CO2,
		Timestamp:   time.Now(),
	})

	return nil
}

// monitorProgress broadcasts the job state on a throttle so SSE clients see
// at most two updates per second regardless of generation rate.
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:       jobID,
				State:       job.State,
				Generation:  job.Generation,
				BestFitness: job.BestFitness,
				Feasible:    job.Feasible,
				Cost:        job.Cost,
				CO2:         job.CO2,
				Timestamp:   time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled.
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints snapshots the incumbent best on the configured cadence.
func monitorCheckpoints(ctx context.Context, jm *JobManager, runStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, runStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint persists the current best of a running job.
func saveCheckpoint(jm *JobManager, runStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Nothing to snapshot before the first generation finishes
	if job.Best == nil {
		slog.Debug("Skipping checkpoint, no best formulation yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		*job.Best,
		job.BestFitness,
		job.Feasible,
		job.Generation,
		job.Config,
	)

	if err := runStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"generation", job.Generation,
		"best_fitness", job.BestFitness,
	)
	return nil
}
