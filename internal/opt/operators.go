package opt

import (
	"math/rand"

	"github.com/betonlab/mixopt/internal/mix"
)

// mutationSigmaFactor scales gaussian mutation noise to each component's
// bound span.
const mutationSigmaFactor = 0.05

// tournamentSelect draws k members uniformly at random and returns the slot
// of the fittest. The first-drawn candidate wins ties (strict comparison).
func tournamentSelect(pop *Population, k int, rng *rand.Rand) int {
	best := rng.Intn(pop.Size())
	for i := 1; i < k; i++ {
		challenger := rng.Intn(pop.Size())
		if pop.Members[challenger].Fitness < pop.Members[best].Fitness {
			best = challenger
		}
	}
	return best
}

// crossover blends two parent formulations into one offspring by a convex
// combination. With perComponent, a fresh coefficient is drawn for every
// component; otherwise one coefficient covers the whole individual.
func crossover(p1, p2 mix.Formulation, perComponent bool, bounds mix.Bounds, rng *rand.Rand) mix.Formulation {
	v1 := p1.Vector()
	v2 := p2.Vector()
	child := make([]float64, len(v1))

	alpha := rng.Float64()
	for i := range child {
		if perComponent {
			alpha = rng.Float64()
		}
		child[i] = alpha*v1[i] + (1-alpha)*v2[i]
	}
	return bounds.Decode(child)
}

// mutate perturbs each component with probability rate by gaussian noise
// scaled to the component's bound span, then clamps. Offspring always lie
// within bounds regardless of the noise draw.
func mutate(f mix.Formulation, rate float64, bounds mix.Bounds, rng *rand.Rand) mix.Formulation {
	vec := f.Vector()
	for i := range vec {
		if rng.Float64() < rate {
			span := bounds.Ranges[i].Span()
			vec[i] += rng.NormFloat64() * mutationSigmaFactor * span
		}
	}
	return bounds.Decode(vec)
}

// sampleUniform draws one formulation uniformly within bounds.
func sampleUniform(bounds mix.Bounds, rng *rand.Rand) mix.Formulation {
	vec := make([]float64, mix.NumComponents)
	for i, r := range bounds.Ranges {
		vec[i] = r.Min + rng.Float64()*r.Span()
	}
	return bounds.Decode(vec)
}

// perturb jitters a starting formulation with gaussian noise per component,
// used when the caller seeds the initial population.
func perturb(f mix.Formulation, bounds mix.Bounds, rng *rand.Rand) mix.Formulation {
	vec := f.Vector()
	for i := range vec {
		span := bounds.Ranges[i].Span()
		vec[i] += rng.NormFloat64() * mutationSigmaFactor * span
	}
	return bounds.Decode(vec)
}
