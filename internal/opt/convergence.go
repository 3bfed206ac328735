package opt

import (
	"log/slog"
	"math"
)

// plateauTracker records the best-fitness history and detects when the
// search has stopped making significant progress.
type plateauTracker struct {
	// patience is the number of generations with no improvement before the
	// run is declared converged. Zero disables detection.
	patience int

	// threshold is the minimum relative improvement required to count as
	// progress. Example: 0.001 = 0.1% improvement required.
	threshold float64

	history         []float64
	bestFitness     float64 // best fitness ever seen
	lastSignificant float64 // last fitness that was a significant improvement
	staleCount      int     // generations without significant improvement
}

func newPlateauTracker(patience int, threshold float64) *plateauTracker {
	return &plateauTracker{
		patience:        patience,
		threshold:       threshold,
		bestFitness:     math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// update records a generation's best fitness and returns true if convergence
// is detected.
func (p *plateauTracker) update(fitness float64) bool {
	p.history = append(p.history, fitness)

	if fitness < p.bestFitness {
		p.bestFitness = fitness
	}

	if p.patience <= 0 {
		return false // never converge if disabled
	}

	// First generation initializes the reference point
	if len(p.history) == 1 {
		p.lastSignificant = fitness
		return false
	}

	improvement := p.lastSignificant - fitness
	relative := improvement
	if denom := math.Abs(p.lastSignificant); denom > 1e-12 && !math.IsInf(denom, 1) {
		relative = improvement / denom
	}

	if relative >= p.threshold {
		p.lastSignificant = fitness
		p.staleCount = 0
		slog.Debug("fitness improvement detected",
			"fitness", fitness,
			"relative_improvement", relative,
		)
		return false
	}

	p.staleCount++
	slog.Debug("no significant fitness improvement",
		"fitness", fitness,
		"last_significant", p.lastSignificant,
		"stale_count", p.staleCount,
		"patience", p.patience,
	)

	if p.staleCount >= p.patience {
		slog.Info("plateau detected, stopping early",
			"stale_count", p.staleCount,
			"patience", p.patience,
			"best_fitness", p.bestFitness,
		)
		return true
	}
	return false
}

// trace returns a copy of the recorded best-fitness history.
func (p *plateauTracker) trace() []float64 {
	return append([]float64{}, p.history...)
}
