package opt

import (
	"log/slog"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
)

// maxViolation is the penalty assigned when the oracle cannot score a
// formulation. Large enough that such individuals rank behind every scored
// one, finite so fitness comparisons stay total.
const maxViolation = 1e6

// evaluator turns formulations into scored individuals. It is safe for
// concurrent use: evaluation draws no randomness and mutates no shared
// state.
type evaluator struct {
	constraints Constraints
	objective   Objective
	predictor   predict.Predictor
}

func newEvaluator(constraints Constraints, objective Objective, predictor predict.Predictor) *evaluator {
	return &evaluator{
		constraints: constraints.normalized(),
		objective:   objective,
		predictor:   predictor,
	}
}

// evaluate calls the oracle exactly once and derives violation, feasibility
// and scalar fitness. Oracle failure degrades the individual to the maximal
// penalty instead of propagating the error.
func (e *evaluator) evaluate(f mix.Formulation) Individual {
	ind := Individual{Formulation: f}

	props, err := e.predictor.Predict(f)
	if err != nil {
		slog.Debug("prediction unavailable, applying maximal penalty", "error", err)
		ind.PredictionFailed = true
		ind.Violation = maxViolation
		ind.Fitness = e.scalarize(f, maxViolation)
		return ind
	}

	ind.Predicted = props
	ind.Violation = e.violation(props)
	ind.Feasible = ind.Violation == 0
	ind.Fitness = e.scalarize(f, ind.Violation)
	return ind
}

// violation sums the weighted non-negative shortfalls against every
// configured limit. Zero means feasible.
func (e *evaluator) violation(props predict.Properties) float64 {
	var v float64
	if shortfall := e.constraints.MinStrength - props.Strength; shortfall > 0 {
		v += e.constraints.StrengthWeight * shortfall
	}
	if limit := e.constraints.MaxChlorideDiffusion; limit > 0 {
		if excess := props.ChlorideDiffusion - limit; excess > 0 {
			v += e.constraints.DiffusionWeight * excess
		}
	}
	if limit := e.constraints.MaxCarbonation; limit > 0 {
		if excess := props.CarbonationDepth - limit; excess > 0 {
			v += e.constraints.CarbonationWeight * excess
		}
	}
	return v
}

// scalarize combines normalized cost, normalized CO₂ and the violation
// penalty into the minimized fitness value.
func (e *evaluator) scalarize(f mix.Formulation, violation float64) float64 {
	cost := e.objective.Costs.Cost(f)
	co2 := e.objective.Emissions.CO2(f)
	return e.objective.CostWeight*cost/e.objective.CostScale +
		e.objective.CO2Weight*co2/e.objective.CO2Scale +
		e.objective.PenaltyScale*violation
}
