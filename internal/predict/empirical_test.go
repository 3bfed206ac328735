package predict

import (
	"errors"
	"testing"

	"github.com/betonlab/mixopt/internal/mix"
)

func standardMix() mix.Formulation {
	return mix.Formulation{
		Cement:          320,
		Slag:            40,
		Water:           170,
		CoarseAggregate: 1080,
		FineAggregate:   730,
		Age:             28,
	}
}

func TestEmpiricalPredictStandardMix(t *testing.T) {
	engine := NewEmpiricalEngine()

	props, err := engine.Predict(standardMix())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	// A C30/37-type mix should land in a plausible structural range
	if props.Strength < 20 || props.Strength > 70 {
		t.Errorf("Strength = %.1f MPa, want plausible structural range", props.Strength)
	}
	if props.ChlorideDiffusion <= 0 || props.ChlorideDiffusion > 30 {
		t.Errorf("ChlorideDiffusion = %.2f, want (0, 30]", props.ChlorideDiffusion)
	}
	if props.CarbonationDepth < 0 || props.CarbonationDepth > 100 {
		t.Errorf("CarbonationDepth = %.1f, want [0, 100]", props.CarbonationDepth)
	}
	if props.Confidence <= 0 || props.Confidence > 1 {
		t.Errorf("Confidence = %.2f, want (0, 1]", props.Confidence)
	}
}

func TestEmpiricalStrengthMonotonicity(t *testing.T) {
	engine := NewEmpiricalEngine()

	lean := standardMix()
	rich := standardMix()
	rich.Cement += 100

	leanProps, err := engine.Predict(lean)
	if err != nil {
		t.Fatalf("Predict(lean) failed: %v", err)
	}
	richProps, err := engine.Predict(rich)
	if err != nil {
		t.Fatalf("Predict(rich) failed: %v", err)
	}

	if richProps.Strength <= leanProps.Strength {
		t.Errorf("more cement should predict more strength: %.1f <= %.1f",
			richProps.Strength, leanProps.Strength)
	}

	young := standardMix()
	young.Age = 7
	youngProps, err := engine.Predict(young)
	if err != nil {
		t.Fatalf("Predict(young) failed: %v", err)
	}
	mature, err := engine.Predict(standardMix())
	if err != nil {
		t.Fatalf("Predict(mature) failed: %v", err)
	}
	if youngProps.Strength >= mature.Strength {
		t.Errorf("7-day strength %.1f should be below 28-day %.1f",
			youngProps.Strength, mature.Strength)
	}
}

func TestEmpiricalDegenerateMix(t *testing.T) {
	engine := NewEmpiricalEngine()

	var f mix.Formulation
	f.Water = 150
	f.Age = 28

	_, err := engine.Predict(f)
	if !errors.Is(err, ErrPredictionUnavailable) {
		t.Fatalf("expected ErrPredictionUnavailable for binderless mix, got %v", err)
	}
}

func TestPredictorFunc(t *testing.T) {
	stub := Func(func(f mix.Formulation) (Properties, error) {
		return Properties{Strength: 0.08*f.Cement - 0.05*f.Water}, nil
	})

	props, err := stub.Predict(mix.Formulation{Cement: 400, Water: 160})
	if err != nil {
		t.Fatalf("stub Predict failed: %v", err)
	}
	if props.Strength != 24 {
		t.Errorf("Strength = %f, want 24", props.Strength)
	}
}
