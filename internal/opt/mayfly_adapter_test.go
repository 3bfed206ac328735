package opt

import (
	"testing"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
)

func TestOptimizeMayflyReturnsBoundedResult(t *testing.T) {
	bounds := mix.DefaultBounds()
	cfg := testConfig()
	cfg.PopulationSize = 20
	cfg.MaxGenerations = 10

	result, err := OptimizeMayfly(bounds, Constraints{MinStrength: 20},
		DefaultObjective(), cfg, linearOracle())
	if err != nil {
		t.Fatalf("OptimizeMayfly failed: %v", err)
	}

	if !bounds.Contains(result.Best.Formulation) {
		t.Errorf("best formulation outside bounds: %+v", result.Best.Formulation)
	}
	if result.Reason != ReasonExhausted {
		t.Errorf("Reason = %q, want %q", result.Reason, ReasonExhausted)
	}
	if len(result.Trace) != 1 {
		t.Errorf("trace length = %d, want 1", len(result.Trace))
	}
	if result.Cost != DefaultObjective().Costs.Cost(result.Best.Formulation) {
		t.Error("Cost does not match the cost table")
	}
}

func TestOptimizeMayflyReportsPredictionFailures(t *testing.T) {
	failing := predict.Func(func(f mix.Formulation) (predict.Properties, error) {
		return predict.Properties{}, predict.ErrPredictionUnavailable
	})

	cfg := testConfig()
	cfg.PopulationSize = 10
	cfg.MaxGenerations = 5

	result, err := OptimizeMayfly(mix.DefaultBounds(), Constraints{MinStrength: 30},
		DefaultObjective(), cfg, failing)
	if err != nil {
		t.Fatalf("OptimizeMayfly failed: %v", err)
	}

	if result.PredictionFailures == 0 {
		t.Error("PredictionFailures should count oracle errors seen during the search")
	}
	if result.Best.Feasible {
		t.Error("an unscorable best must not be feasible")
	}
}

func TestOptimizeMayflyValidation(t *testing.T) {
	if _, err := OptimizeMayfly(mix.DefaultBounds(), Constraints{},
		DefaultObjective(), testConfig(), nil); err == nil {
		t.Fatal("expected error for nil predictor")
	}

	bad := mix.DefaultBounds()
	bad.Ranges[mix.Water] = mix.Range{Min: 300, Max: 100}
	if _, err := OptimizeMayfly(bad, Constraints{},
		DefaultObjective(), testConfig(), linearOracle()); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
}
