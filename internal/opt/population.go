package opt

import (
	"sort"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/predict"
)

// Individual is one candidate formulation with its cached evaluation.
// Fitness is computed exactly once per generation per individual.
type Individual struct {
	Formulation mix.Formulation    `json:"formulation"`
	Predicted   predict.Properties `json:"predicted"`

	// Fitness is the scalarized objective; lower is better.
	Fitness float64 `json:"fitness"`

	// Violation is the weighted sum of constraint shortfalls; zero means
	// feasible.
	Violation float64 `json:"violation"`
	Feasible  bool    `json:"feasible"`

	// PredictionFailed marks individuals the oracle could not score; they
	// carry the maximal penalty instead of aborting the run.
	PredictionFailed bool `json:"predictionFailed,omitempty"`
}

// Population is a fixed-size arena of individuals plus a generation counter.
// The driver replaces members in place each generation; a population is
// never shared between runs.
type Population struct {
	Members    []Individual
	Generation int
}

func newPopulation(size int) *Population {
	return &Population{Members: make([]Individual, size)}
}

// Size returns the fixed population size N.
func (p *Population) Size() int {
	return len(p.Members)
}

// Best returns the index of the lowest-fitness member. Ties break toward
// the lower slot, so the rule is stable across runs.
func (p *Population) Best() int {
	best := 0
	for i := 1; i < len(p.Members); i++ {
		if p.Members[i].Fitness < p.Members[best].Fitness {
			best = i
		}
	}
	return best
}

// eliteIndices returns the slots of the count fittest members in fitness
// order. The sort is stable: equal fitness keeps the original slot order,
// so the first-encountered individual wins ties.
func (p *Population) eliteIndices(count int) []int {
	idx := make([]int, len(p.Members))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return p.Members[idx[a]].Fitness < p.Members[idx[b]].Fitness
	})
	if count > len(idx) {
		count = len(idx)
	}
	return idx[:count]
}
