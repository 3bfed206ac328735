package opt

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/cwbudde/mayfly"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
)

// MayflyAdapter wraps the external Mayfly library to conform to the Engine
// interface. The library only supports scalar bounds, so the search runs in
// the unit cube and coordinates are rescaled per component inside eval.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter
func NewMayfly(maxIters, popSize int, seed int64) Engine {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the Mayfly optimization using the external library
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	rescale := func(unit []float64) []float64 {
		out := make([]float64, dim)
		for i := 0; i < dim; i++ {
			out[i] = lower[i] + unit[i]*(upper[i]-lower[i])
		}
		return out
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(unit []float64) float64 {
		return eval(rescale(unit))
	}
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Fall back to the lower corner if the library rejects the setup
		corner := rescale(make([]float64, dim))
		return corner, eval(corner)
	}

	best := rescale(result.GlobalBest.Position)
	return best, result.GlobalBest.Cost
}

// OptimizeMayfly runs the alternative swarm backend against the same
// fitness function as the GA and reports its single best formulation.
// It has no per-generation view, so the trace holds one entry and the run
// always terminates as exhausted.
func OptimizeMayfly(bounds mix.Bounds, constraints Constraints, objective Objective, cfg Config, predictor predict.Predictor) (*Result, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := objective.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}

	ev := newEvaluator(constraints, objective, predictor)
	var failures atomic.Int64
	eval := func(vec []float64) float64 {
		ind := ev.evaluate(bounds.Decode(vec))
		if ind.PredictionFailed {
			failures.Add(1)
		}
		return ind.Fitness
	}

	lower, upper := bounds.Vectors()
	engine := NewMayfly(cfg.MaxGenerations, cfg.PopulationSize, cfg.Seed)
	bestVec, bestFitness := engine.Run(eval, lower, upper, int(mix.NumComponents))

	best := ev.evaluate(bounds.Decode(bestVec))
	return &Result{
		Best:               best,
		Cost:               objective.Costs.Cost(best.Formulation),
		CO2:                objective.Emissions.CO2(best.Formulation),
		Generations:        cfg.MaxGenerations,
		Trace:              []float64{bestFitness},
		Reason:             ReasonExhausted,
		PredictionFailures: int(failures.Load()),
	}, nil
}
