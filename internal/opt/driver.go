// Package opt implements the constrained evolutionary search over the mix
// design space: generational GA with tournament selection, blend crossover,
// bounded gaussian mutation, elitism and plateau-based convergence control.
package opt

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/sourcegraph/conc/pool"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
)

// Reason tells how a run terminated.
type Reason string

const (
	// ReasonConverged means the best fitness plateaued.
	ReasonConverged Reason = "converged"
	// ReasonExhausted means the generation cap was reached.
	ReasonExhausted Reason = "exhausted"
)

// Result is the outcome of one optimization run.
type Result struct {
	// Best is the best individual seen across the whole run, not merely the
	// final generation. When no feasible mix exists under the bounds, it is
	// the least-violating one and Best.Feasible is false.
	Best Individual `json:"best"`

	// Cost and CO2 are the material cost (€/m³) and carbon footprint
	// (kg CO₂/m³) of the best formulation.
	Cost float64 `json:"cost"`
	CO2  float64 `json:"co2"`

	// Generation is where the best individual was first found.
	Generation int `json:"generation"`

	// Generations is the total number of generations run.
	Generations int `json:"generations"`

	// Trace is the best fitness per generation, non-increasing under
	// elitism. Index 0 is the initial population.
	Trace []float64 `json:"trace"`

	Reason Reason `json:"reason"`

	// PredictionFailures counts individuals the oracle could not score.
	PredictionFailures int `json:"predictionFailures"`
}

// Optimize runs the generational search and returns the best formulation
// found. All validation errors surface before the first generation; an
// infeasible outcome is reported through Best.Feasible, never as an error.
func Optimize(bounds mix.Bounds, constraints Constraints, objective Objective, cfg Config, predictor predict.Predictor) (*Result, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := objective.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer config: %w", err)
	}
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}

	slog.Info("starting optimization",
		"population", cfg.PopulationSize,
		"max_generations", cfg.MaxGenerations,
		"min_strength", constraints.MinStrength,
		"seed", cfg.Seed,
	)

	rng := rand.New(rand.NewSource(cfg.Seed))
	ev := newEvaluator(constraints, objective, predictor)

	run := &run{
		bounds:  bounds,
		cfg:     cfg,
		ev:      ev,
		rng:     rng,
		tracker: newPlateauTracker(cfg.PlateauPatience, cfg.PlateauThreshold),
	}
	return run.execute()
}

// run holds the mutable state of one optimization; never shared.
type run struct {
	bounds  mix.Bounds
	cfg     Config
	ev      *evaluator
	rng     *rand.Rand
	tracker *plateauTracker

	pop      *Population
	best     Individual
	bestGen  int
	failures int
}

func (r *run) execute() (*Result, error) {
	r.initialize()
	r.recordGeneration()

	reason := ReasonExhausted
	for r.pop.Generation < r.cfg.MaxGenerations {
		r.evolve()
		if converged := r.recordGeneration(); converged {
			reason = ReasonConverged
			break
		}
	}

	result := &Result{
		Best:               r.best,
		Cost:               r.ev.objective.Costs.Cost(r.best.Formulation),
		CO2:                r.ev.objective.Emissions.CO2(r.best.Formulation),
		Generation:         r.bestGen,
		Generations:        r.pop.Generation,
		Trace:              r.tracker.trace(),
		Reason:             reason,
		PredictionFailures: r.failures,
	}

	slog.Info("optimization finished",
		"reason", reason,
		"generations", result.Generations,
		"best_fitness", r.best.Fitness,
		"feasible", r.best.Feasible,
		"cost", result.Cost,
		"co2", result.CO2,
	)
	if !r.best.Feasible {
		slog.Warn("no feasible mix found under the configured bounds",
			"min_strength", r.ev.constraints.MinStrength,
			"best_violation", r.best.Violation,
		)
	}
	return result, nil
}

// initialize samples the first population uniformly within bounds, or from
// perturbations of a caller-supplied start formulation, and evaluates it.
func (r *run) initialize() {
	r.pop = newPopulation(r.cfg.PopulationSize)

	forms := make([]mix.Formulation, r.cfg.PopulationSize)
	if r.cfg.Start != nil {
		forms[0] = r.bounds.Clamp(*r.cfg.Start)
		for i := 1; i < len(forms); i++ {
			forms[i] = perturb(forms[0], r.bounds, r.rng)
		}
	} else {
		for i := range forms {
			forms[i] = sampleUniform(r.bounds, r.rng)
		}
	}

	r.evaluateInto(forms, r.pop.Members)
}

// evolve builds the next generation: elites are carried unchanged, the
// remaining slots are filled by selected, crossed and mutated offspring.
// All stochastic draws come from the single sequential RNG; evaluation is
// randomness-free, so parallel scoring preserves determinism.
func (r *run) evolve() {
	elite := r.pop.eliteIndices(r.cfg.ElitismCount)

	next := make([]Individual, r.pop.Size())
	for i, idx := range elite {
		next[i] = r.pop.Members[idx]
	}

	offspring := make([]mix.Formulation, r.pop.Size()-len(elite))
	for i := range offspring {
		p1 := r.pop.Members[tournamentSelect(r.pop, r.cfg.TournamentSize, r.rng)].Formulation
		child := p1
		if r.rng.Float64() < r.cfg.CrossoverRate {
			p2 := r.pop.Members[tournamentSelect(r.pop, r.cfg.TournamentSize, r.rng)].Formulation
			child = crossover(p1, p2, r.cfg.BlendPerComponent, r.bounds, r.rng)
		}
		offspring[i] = mutate(child, r.cfg.MutationRate, r.bounds, r.rng)
	}

	r.evaluateInto(offspring, next[len(elite):])

	r.pop.Members = next
	r.pop.Generation++
}

// evaluateInto scores formulations into disjoint slots of dst. With more
// than one worker the evaluations run concurrently; each goroutine writes
// only its own slot, so no locks are needed.
func (r *run) evaluateInto(forms []mix.Formulation, dst []Individual) {
	if r.cfg.Workers > 1 {
		p := pool.New().WithMaxGoroutines(r.cfg.Workers)
		for i := range forms {
			p.Go(func() {
				dst[i] = r.ev.evaluate(forms[i])
			})
		}
		p.Wait()
	} else {
		for i := range forms {
			dst[i] = r.ev.evaluate(forms[i])
		}
	}

	for i := range dst {
		if dst[i].PredictionFailed {
			r.failures++
		}
	}
}

// recordGeneration updates the incumbent best and the plateau tracker,
// returning true when the run has converged. The strict comparison keeps
// the earlier individual on ties.
func (r *run) recordGeneration() bool {
	genBest := r.pop.Members[r.pop.Best()]
	if r.pop.Generation == 0 || genBest.Fitness < r.best.Fitness {
		r.best = genBest
		r.bestGen = r.pop.Generation
	}

	slog.Debug("generation complete",
		"generation", r.pop.Generation,
		"best_fitness", r.best.Fitness,
		"feasible", r.best.Feasible,
	)
	if r.cfg.OnGeneration != nil {
		r.cfg.OnGeneration(r.pop.Generation, r.best)
	}
	return r.tracker.update(r.best.Fitness)
}
