package opt

import (
	"math"
	"testing"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
)

func constOracle(p predict.Properties) predict.Predictor {
	return predict.Func(func(mix.Formulation) (predict.Properties, error) {
		return p, nil
	})
}

func TestEvaluateFeasible(t *testing.T) {
	ev := newEvaluator(
		Constraints{MinStrength: 30},
		DefaultObjective(),
		constOracle(predict.Properties{Strength: 45}),
	)
	f := mix.Presets()[0].Formulation

	ind := ev.evaluate(f)
	if !ind.Feasible {
		t.Fatal("45 MPa against a 30 MPa floor must be feasible")
	}
	if ind.Violation != 0 {
		t.Errorf("Violation = %f, want 0", ind.Violation)
	}

	obj := DefaultObjective()
	want := obj.CostWeight*obj.Costs.Cost(f)/obj.CostScale +
		obj.CO2Weight*obj.Emissions.CO2(f)/obj.CO2Scale
	if math.Abs(ind.Fitness-want) > 1e-9 {
		t.Errorf("Fitness = %f, want %f", ind.Fitness, want)
	}
}

func TestEvaluateStrengthShortfall(t *testing.T) {
	ev := newEvaluator(
		Constraints{MinStrength: 30},
		DefaultObjective(),
		constOracle(predict.Properties{Strength: 22}),
	)

	ind := ev.evaluate(mix.Presets()[0].Formulation)
	if ind.Feasible {
		t.Fatal("22 MPa against a 30 MPa floor cannot be feasible")
	}
	if math.Abs(ind.Violation-8) > 1e-9 {
		t.Errorf("Violation = %f, want 8", ind.Violation)
	}
}

func TestEvaluateWeightedMultiConstraint(t *testing.T) {
	ev := newEvaluator(
		Constraints{
			MinStrength:          30,
			StrengthWeight:       2,
			MaxChlorideDiffusion: 8,
			DiffusionWeight:      3,
			MaxCarbonation:       15,
		},
		DefaultObjective(),
		constOracle(predict.Properties{
			Strength:          25, // shortfall 5, weight 2
			ChlorideDiffusion: 10, // excess 2, weight 3
			CarbonationDepth:  20, // excess 5, weight defaults to 1
		}),
	)

	ind := ev.evaluate(mix.Presets()[0].Formulation)
	want := 2*5.0 + 3*2.0 + 1*5.0
	if math.Abs(ind.Violation-want) > 1e-9 {
		t.Errorf("Violation = %f, want %f", ind.Violation, want)
	}
}

func TestEvaluateDisabledLimitsIgnored(t *testing.T) {
	// Zero limits disable the diffusion and carbonation checks entirely.
	ev := newEvaluator(
		Constraints{MinStrength: 10},
		DefaultObjective(),
		constOracle(predict.Properties{
			Strength:          50,
			ChlorideDiffusion: 25,
			CarbonationDepth:  90,
		}),
	)

	if ind := ev.evaluate(mix.Presets()[0].Formulation); !ind.Feasible {
		t.Errorf("disabled limits must not contribute violation, got %f", ind.Violation)
	}
}

func TestEvaluateOracleFailure(t *testing.T) {
	failing := predict.Func(func(mix.Formulation) (predict.Properties, error) {
		return predict.Properties{}, predict.ErrPredictionUnavailable
	})
	ev := newEvaluator(Constraints{MinStrength: 30}, DefaultObjective(), failing)

	ind := ev.evaluate(mix.Presets()[0].Formulation)
	if !ind.PredictionFailed {
		t.Fatal("PredictionFailed not set")
	}
	if ind.Feasible {
		t.Error("unscored individual cannot be feasible")
	}
	if ind.Violation != maxViolation {
		t.Errorf("Violation = %g, want %g", ind.Violation, maxViolation)
	}
	if math.IsInf(ind.Fitness, 1) || math.IsNaN(ind.Fitness) {
		t.Errorf("fitness must stay finite, got %v", ind.Fitness)
	}

	// A scored-but-violating individual must still rank ahead of it.
	scored := newEvaluator(Constraints{MinStrength: 30}, DefaultObjective(),
		constOracle(predict.Properties{Strength: 5})).evaluate(mix.Presets()[0].Formulation)
	if scored.Fitness >= ind.Fitness {
		t.Error("scored individual ranks behind an unscored one")
	}
}

func TestScalarizeWeightsAndScales(t *testing.T) {
	obj := Objective{
		CostWeight:   2,
		CO2Weight:    0.5,
		CostScale:    50,
		CO2Scale:     200,
		PenaltyScale: 1000,
		Costs:        mix.DefaultCosts(),
		Emissions:    mix.DefaultEmissions(),
	}
	ev := newEvaluator(Constraints{}, obj, constOracle(predict.Properties{}))
	f := mix.Presets()[0].Formulation

	got := ev.scalarize(f, 0.25)
	want := 2*obj.Costs.Cost(f)/50 + 0.5*obj.Emissions.CO2(f)/200 + 1000*0.25
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("scalarize = %f, want %f", got, want)
	}
}
