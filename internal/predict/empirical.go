package predict

import (
	"fmt"
	"math"

	"github.com/betonlab/mixopt/internal/mix"
)

// Physical clamps applied to every prediction, matching the ranges the
// durability targets are defined on.
const (
	maxStrength    = 150 // MPa
	maxDiffusion   = 30  // 1e-12 m²/s
	maxCarbonation = 100 // mm
)

// EmpiricalEngine predicts concrete properties from a Bolomey-type strength
// law with EN 1992-1-1 maturity, and monotone chloride/carbonation estimates
// driven by the water/binder ratio and the substitution fraction. It is the
// default oracle when no trained model is wired in.
type EmpiricalEngine struct {
	// BolomeyCoefficient scales the strength law; 27.5 suits CEM I 42.5.
	BolomeyCoefficient float64

	// SlagActivity and FlyAshActivity weight supplementary binders in the
	// effective binder content (k-value concept from EN 206).
	SlagActivity   float64
	FlyAshActivity float64
}

// NewEmpiricalEngine returns an engine with standard coefficients.
func NewEmpiricalEngine() *EmpiricalEngine {
	return &EmpiricalEngine{
		BolomeyCoefficient: 27.5,
		SlagActivity:       0.9,
		FlyAshActivity:     0.4,
	}
}

// Predict implements the Predictor contract. A degenerate mix (no binder or
// no water) is out of the engine's validity domain and reported as
// prediction unavailable rather than extrapolated.
func (e *EmpiricalEngine) Predict(f mix.Formulation) (Properties, error) {
	if f.TotalBinder() <= 0 || f.Water <= 0 {
		return Properties{}, fmt.Errorf("%w: binder=%.1f water=%.1f",
			ErrPredictionUnavailable, f.TotalBinder(), f.Water)
	}
	if f.Age < 1 {
		return Properties{}, fmt.Errorf("%w: age %.1f below one day",
			ErrPredictionUnavailable, f.Age)
	}

	effBinder := f.Cement + e.SlagActivity*f.Slag + e.FlyAshActivity*f.FlyAsh
	wb := f.WaterBinderRatio()
	sub := f.SubstitutionFraction()

	// Bolomey at 28 days, then EN 1992-1-1 s-curve maturity (class N cement).
	fc28 := e.BolomeyCoefficient * (effBinder/f.Water - 0.5)
	maturity := math.Exp(0.25 * (1 - math.Sqrt(28/f.Age)))
	strength := fc28 * maturity

	// Superplasticizer improves packing; small bounded bonus.
	strength *= 1 + 0.01*math.Min(f.Superplasticizer, 10)

	// Chloride diffusion grows with the square of w/b and is cut down by
	// slag-rich binders.
	diffusion := 2 + 45*wb*wb*(1-0.6*sub)

	// Carbonation depth grows with w/b and substitution (less portlandite
	// to carbonate through), with a sqrt-of-age front.
	ageYears := f.Age / 365
	carbonation := (8 + 70*(wb-0.35) + 15*sub) * math.Sqrt(math.Max(ageYears, 28.0/365))

	// Confidence degrades toward the edges of the calibration domain.
	confidence := 0.92
	if wb < 0.3 || wb > 0.7 {
		confidence = 0.6
	}

	return Properties{
		Strength:          clampTo(strength, 0, maxStrength),
		ChlorideDiffusion: clampTo(diffusion, 0, maxDiffusion),
		CarbonationDepth:  clampTo(carbonation, 0, maxCarbonation),
		Confidence:        confidence,
	}, nil
}

func clampTo(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
