package opt

import (
	"errors"
	"fmt"

	"github.com/betonlab/mixopt/internal/mix"
)

// ErrBadObjective reports objective weights or scales that cannot drive a
// minimization (for example both weights zero). Fatal before any run.
var ErrBadObjective = errors.New("invalid objective configuration")

// Config holds the evolutionary search parameters.
type Config struct {
	// PopulationSize is the fixed number of individuals N, kept exact
	// across all generations. Minimum 2.
	PopulationSize int `json:"populationSize" yaml:"population_size"`

	// MaxGenerations caps the run; reaching it terminates as exhausted.
	MaxGenerations int `json:"maxGenerations" yaml:"max_generations"`

	// CrossoverRate is the probability an offspring is produced by blending
	// two parents instead of copying one.
	CrossoverRate float64 `json:"crossoverRate" yaml:"crossover_rate"`

	// MutationRate is the per-component probability of additive noise.
	MutationRate float64 `json:"mutationRate" yaml:"mutation_rate"`

	// ElitismCount is the number of best individuals carried unchanged into
	// the next generation. Ties break toward the lower population slot.
	ElitismCount int `json:"elitismCount" yaml:"elitism_count"`

	// TournamentSize is the number of candidates drawn per parent slot.
	TournamentSize int `json:"tournamentSize" yaml:"tournament_size"`

	// PlateauPatience is the number of generations without significant
	// improvement before the run is declared converged. Zero disables
	// plateau detection.
	PlateauPatience int `json:"plateauPatience" yaml:"plateau_patience"`

	// PlateauThreshold is the minimum relative improvement of the best
	// fitness that counts as progress.
	PlateauThreshold float64 `json:"plateauThreshold" yaml:"plateau_threshold"`

	// Workers bounds the goroutines used for fitness evaluation within one
	// generation. Zero or one means sequential.
	Workers int `json:"workers" yaml:"workers"`

	// Seed makes runs reproducible: identical config, seed and oracle
	// produce identical results, parallel or not.
	Seed int64 `json:"seed" yaml:"seed"`

	// BlendPerComponent draws one crossover coefficient per component
	// instead of one per offspring.
	BlendPerComponent bool `json:"blendPerComponent" yaml:"blend_per_component"`

	// Start optionally seeds the initial population around a known
	// formulation instead of sampling uniformly.
	Start *mix.Formulation `json:"start,omitempty" yaml:"start,omitempty"`

	// OnGeneration, when set, is called after every generation with the
	// generation number and the incumbent best. It runs on the driver
	// goroutine, so it must return quickly.
	OnGeneration func(generation int, best Individual) `json:"-" yaml:"-"`
}

// DefaultConfig returns the standard search parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize:    100,
		MaxGenerations:    50,
		CrossoverRate:     0.8,
		MutationRate:      0.1,
		ElitismCount:      10,
		TournamentSize:    5,
		PlateauPatience:   8,
		PlateauThreshold:  0.001,
		Workers:           4,
		Seed:              42,
		BlendPerComponent: true,
	}
}

// Validate checks the search parameters; all failures are configuration
// errors surfaced before the first generation.
func (c Config) Validate() error {
	if c.PopulationSize < 2 {
		return fmt.Errorf("population size must be at least 2, got %d", c.PopulationSize)
	}
	if c.MaxGenerations < 1 {
		return fmt.Errorf("max generations must be at least 1, got %d", c.MaxGenerations)
	}
	if c.ElitismCount < 0 || c.ElitismCount >= c.PopulationSize {
		return fmt.Errorf("elitism count %d must be in [0, population size)", c.ElitismCount)
	}
	if c.TournamentSize < 2 {
		return fmt.Errorf("tournament size must be at least 2, got %d", c.TournamentSize)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate %.3f must be in [0,1]", c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate %.3f must be in [0,1]", c.MutationRate)
	}
	return nil
}

// Objective scalarizes material cost and carbon footprint into one fitness
// term, with a penalty component for constraint violations. Lower is better.
type Objective struct {
	CostWeight float64 `json:"costWeight" yaml:"cost_weight"`
	CO2Weight  float64 `json:"co2Weight" yaml:"co2_weight"`

	// CostScale and CO2Scale are normalization references so the two terms
	// are comparable in magnitude (typical €/m³ and kg CO₂/m³ of a
	// structural mix).
	CostScale float64 `json:"costScale" yaml:"cost_scale"`
	CO2Scale  float64 `json:"co2Scale" yaml:"co2_scale"`

	// PenaltyScale multiplies the constraint violation. It is large enough
	// that any feasible individual outranks any infeasible one.
	PenaltyScale float64 `json:"penaltyScale" yaml:"penalty_scale"`

	Costs     mix.CostTable     `json:"-" yaml:"-"`
	Emissions mix.EmissionTable `json:"-" yaml:"-"`
}

// DefaultObjective weights cost and CO₂ equally against the default tables.
func DefaultObjective() Objective {
	return Objective{
		CostWeight:   1,
		CO2Weight:    1,
		CostScale:    100,
		CO2Scale:     400,
		PenaltyScale: 1e3,
		Costs:        mix.DefaultCosts(),
		Emissions:    mix.DefaultEmissions(),
	}
}

// Validate rejects weight and scale combinations that cannot rank mixes.
func (o Objective) Validate() error {
	if o.CostWeight < 0 || o.CO2Weight < 0 {
		return fmt.Errorf("%w: negative weight (cost=%.3f, co2=%.3f)",
			ErrBadObjective, o.CostWeight, o.CO2Weight)
	}
	if o.CostWeight == 0 && o.CO2Weight == 0 {
		return fmt.Errorf("%w: both weights are zero", ErrBadObjective)
	}
	if o.CostScale <= 0 || o.CO2Scale <= 0 {
		return fmt.Errorf("%w: scales must be positive (cost=%.3f, co2=%.3f)",
			ErrBadObjective, o.CostScale, o.CO2Scale)
	}
	if o.PenaltyScale <= 0 {
		return fmt.Errorf("%w: penalty scale must be positive, got %.3f",
			ErrBadObjective, o.PenaltyScale)
	}
	return nil
}

// Constraints are the feasibility requirements checked against predicted
// properties. Secondary limits are disabled when non-positive.
type Constraints struct {
	// MinStrength is the required predicted compressive strength in MPa.
	MinStrength    float64 `json:"minStrength" yaml:"min_strength"`
	StrengthWeight float64 `json:"strengthWeight" yaml:"strength_weight"`

	// MaxChlorideDiffusion caps the diffusion coefficient (1e-12 m²/s).
	MaxChlorideDiffusion float64 `json:"maxChlorideDiffusion" yaml:"max_chloride_diffusion"`
	DiffusionWeight      float64 `json:"diffusionWeight" yaml:"diffusion_weight"`

	// MaxCarbonation caps the predicted carbonation depth in mm.
	MaxCarbonation    float64 `json:"maxCarbonation" yaml:"max_carbonation"`
	CarbonationWeight float64 `json:"carbonationWeight" yaml:"carbonation_weight"`
}

// normalized returns a copy with unset penalty weights defaulted to 1, so a
// configured limit always carries weight.
func (c Constraints) normalized() Constraints {
	if c.StrengthWeight <= 0 {
		c.StrengthWeight = 1
	}
	if c.DiffusionWeight <= 0 {
		c.DiffusionWeight = 1
	}
	if c.CarbonationWeight <= 0 {
		c.CarbonationWeight = 1
	}
	return c
}
