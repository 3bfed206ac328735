package store

import (
	"errors"
	"math"
	"testing"
	"time"
)

func validCheckpoint() *Checkpoint {
	return createTestCheckpoint("run-abc")
}

func TestCheckpointValidate_Valid(t *testing.T) {
	if err := validCheckpoint().Validate(); err != nil {
		t.Fatalf("valid checkpoint rejected: %v", err)
	}
}

func TestCheckpointValidate_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Checkpoint)
	}{
		{"empty job id", func(c *Checkpoint) { c.JobID = "" }},
		{"no binder", func(c *Checkpoint) { c.Best.Cement, c.Best.Slag, c.Best.FlyAsh = 0, 0, 0 }},
		{"nan fitness", func(c *Checkpoint) { c.BestFitness = math.NaN() }},
		{"infinite fitness", func(c *Checkpoint) { c.BestFitness = math.Inf(1) }},
		{"negative generation", func(c *Checkpoint) { c.Generation = -1 }},
		{"zero timestamp", func(c *Checkpoint) { c.Timestamp = time.Time{} }},
		{"pop size too small", func(c *Checkpoint) { c.Config.PopSize = 1 }},
		{"no generations", func(c *Checkpoint) { c.Config.Generations = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCheckpoint()
			tc.mutate(c)

			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestCheckpointIsCompatible(t *testing.T) {
	c := validCheckpoint()

	if err := c.IsCompatible(c.Config); err != nil {
		t.Fatalf("identical config rejected: %v", err)
	}

	algo := c.Config
	algo.Algorithm = "mayfly"
	if err := c.IsCompatible(algo); err == nil {
		t.Error("algorithm change accepted")
	}

	strength := c.Config
	strength.MinStrength = 50
	if err := c.IsCompatible(strength); err == nil {
		t.Error("target strength change accepted")
	}

	weights := c.Config
	weights.CO2Weight = 3
	if err := c.IsCompatible(weights); err == nil {
		t.Error("objective weight change accepted")
	}

	// Run-length knobs may differ: resuming with more generations is the
	// whole point.
	longer := c.Config
	longer.Generations = 500
	longer.PopSize = 200
	longer.Seed = 7
	if err := c.IsCompatible(longer); err != nil {
		t.Errorf("longer resume rejected: %v", err)
	}
}

func TestCompatibilityErrorMessage(t *testing.T) {
	c := validCheckpoint()
	other := c.Config
	other.Algorithm = "mayfly"

	err := c.IsCompatible(other)
	var cerr *CompatibilityError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CompatibilityError, got %T", err)
	}
	if cerr.Field != "Algorithm" {
		t.Errorf("Field = %q, want Algorithm", cerr.Field)
	}
}

func TestCheckpointToInfo(t *testing.T) {
	c := validCheckpoint()
	info := c.ToInfo()

	if info.JobID != c.JobID {
		t.Errorf("JobID mismatch: %s vs %s", info.JobID, c.JobID)
	}
	if info.BestFitness != c.BestFitness {
		t.Errorf("BestFitness mismatch: %f vs %f", info.BestFitness, c.BestFitness)
	}
	if info.Generation != c.Generation {
		t.Errorf("Generation mismatch: %d vs %d", info.Generation, c.Generation)
	}
	if info.Algorithm != c.Config.Algorithm {
		t.Errorf("Algorithm mismatch: %s vs %s", info.Algorithm, c.Config.Algorithm)
	}
	if info.MinStrength != c.Config.MinStrength {
		t.Errorf("MinStrength mismatch: %f vs %f", info.MinStrength, c.Config.MinStrength)
	}
}

func TestNewCheckpointSetsTimestamp(t *testing.T) {
	before := time.Now()
	c := NewCheckpoint("run-x", testFormulation(), 0.9, true, 5, validCheckpoint().Config)
	if c.Timestamp.Before(before) {
		t.Error("timestamp not set to creation time")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("freshly built checkpoint invalid: %v", err)
	}
}
