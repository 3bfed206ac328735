// Package predict defines the property-prediction oracle the optimizer
// queries, and ships an empirical baseline engine so the tool works without
// an externally trained model.
package predict

import (
	"errors"

	"github.com/betonlab/mixopt/internal/mix"
)

// Properties are the predicted durability targets for one formulation.
// Confidence is advisory only and never gates feasibility decisions.
type Properties struct {
	// Strength is the predicted compressive strength in MPa.
	Strength float64 `json:"strength"`

	// ChlorideDiffusion is the chloride diffusion coefficient in 1e-12 m²/s.
	ChlorideDiffusion float64 `json:"chlorideDiffusion"`

	// CarbonationDepth is the predicted carbonation depth in mm.
	CarbonationDepth float64 `json:"carbonationDepth"`

	// Confidence is the oracle's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence"`
}

// ErrPredictionUnavailable signals that the oracle could not produce a
// prediction for a formulation (out-of-distribution input, degenerate mix).
// The optimizer converts it into a maximal penalty instead of failing a run.
var ErrPredictionUnavailable = errors.New("prediction unavailable")

// Predictor is the oracle contract: a pure, synchronous function from
// formulation to predicted properties. Implementations must be safe for
// concurrent use, since fitness evaluation is parallelized within a
// generation.
type Predictor interface {
	Predict(f mix.Formulation) (Properties, error)
}

// Func adapts a plain function to the Predictor interface.
type Func func(f mix.Formulation) (Properties, error)

// Predict implements Predictor.
func (fn Func) Predict(f mix.Formulation) (Properties, error) {
	return fn(f)
}
