package store

import (
	"fmt"
	"math"
	"time"

	"github.com/betonlab/mixopt/internal/mix"
)

// RunConfig is the subset of a job's configuration that a checkpoint carries.
// It lives here, not in the server package, to avoid an import cycle.
type RunConfig struct {
	// Algorithm is the search backend, "ga" or "mayfly".
	Algorithm string `json:"algorithm"`

	// MinStrength is the required compressive strength in MPa.
	MinStrength float64 `json:"minStrength"`

	// CostWeight and CO2Weight are the objective weights of the run.
	CostWeight float64 `json:"costWeight"`
	CO2Weight  float64 `json:"co2Weight"`

	PopSize     int   `json:"popSize"`
	Generations int   `json:"generations"`
	Seed        int64 `json:"seed"`

	// CheckpointInterval is the checkpoint cadence in seconds, 0 disables it.
	CheckpointInterval int `json:"checkpointInterval,omitempty"`
}

// Checkpoint is a resumable snapshot of an optimization run.
//
// Only the best formulation found so far is saved, never the population or
// any optimizer-internal state. Resuming therefore restarts the search with
// a fresh population seeded around the checkpointed best (via the driver's
// start-formulation option), so a resumed run diverges from an uninterrupted
// one, but its best fitness can never regress: the starting individual is
// carried into slot zero and protected by elitism.
type Checkpoint struct {
	// JobID is the unique identifier of the run.
	JobID string `json:"jobId"`

	// Best is the best formulation found at checkpoint time.
	Best mix.Formulation `json:"best"`

	// BestFitness is the scalarized objective value of Best.
	BestFitness float64 `json:"bestFitness"`

	// Feasible records whether Best satisfied every constraint.
	Feasible bool `json:"feasible"`

	// Generation is the generation at which the checkpoint was taken.
	Generation int `json:"generation"`

	// Timestamp records when the checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config is kept for compatibility checks on resume.
	Config RunConfig `json:"config"`
}

// CheckpointInfo is checkpoint metadata for listings, without the
// formulation payload.
type CheckpointInfo struct {
	JobID       string    `json:"jobId"`
	BestFitness float64   `json:"bestFitness"`
	Feasible    bool      `json:"feasible"`
	Generation  int       `json:"generation"`
	Timestamp   time.Time `json:"timestamp"`
	Algorithm   string    `json:"algorithm"`
	MinStrength float64   `json:"minStrength"`
}

// NewCheckpoint snapshots the current best of a running job.
func NewCheckpoint(jobID string, best mix.Formulation, bestFitness float64, feasible bool, generation int, config RunConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		Best:        best,
		BestFitness: bestFitness,
		Feasible:    feasible,
		Generation:  generation,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo strips the checkpoint down to listing metadata.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:       c.JobID,
		BestFitness: c.BestFitness,
		Feasible:    c.Feasible,
		Generation:  c.Generation,
		Timestamp:   c.Timestamp,
		Algorithm:   c.Config.Algorithm,
		MinStrength: c.Config.MinStrength,
	}
}

// Validate rejects checkpoints that cannot seed a resume.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.Best.TotalBinder() <= 0 {
		return &ValidationError{Field: "Best", Reason: "formulation has no binder"}
	}
	if math.IsNaN(c.BestFitness) || math.IsInf(c.BestFitness, 0) {
		return &ValidationError{Field: "BestFitness", Reason: "must be finite"}
	}
	if c.Generation < 0 {
		return &ValidationError{Field: "Generation", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.PopSize < 2 {
		return &ValidationError{Field: "Config.PopSize", Reason: "must be at least 2"}
	}
	if c.Config.Generations <= 0 {
		return &ValidationError{Field: "Config.Generations", Reason: "must be positive"}
	}
	return nil
}

// ValidationError reports an invalid checkpoint field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks whether the checkpoint can be resumed under the given
// config. The target strength, objective weights and backend must match;
// anything else would silently change what the saved best means.
func (c *Checkpoint) IsCompatible(config RunConfig) error {
	if c.Config.Algorithm != config.Algorithm {
		return &CompatibilityError{
			Field:    "Algorithm",
			Expected: c.Config.Algorithm,
			Actual:   config.Algorithm,
		}
	}
	if c.Config.MinStrength != config.MinStrength {
		return &CompatibilityError{
			Field:    "MinStrength",
			Expected: fmt.Sprintf("%g", c.Config.MinStrength),
			Actual:   fmt.Sprintf("%g", config.MinStrength),
		}
	}
	if c.Config.CostWeight != config.CostWeight || c.Config.CO2Weight != config.CO2Weight {
		return &CompatibilityError{
			Field:    "Weights",
			Expected: fmt.Sprintf("cost=%g co2=%g", c.Config.CostWeight, c.Config.CO2Weight),
			Actual:   fmt.Sprintf("cost=%g co2=%g", config.CostWeight, config.CO2Weight),
		}
	}
	return nil
}

// CompatibilityError reports a config mismatch between a checkpoint and a
// resume request.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
