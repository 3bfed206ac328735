// Package config loads the YAML configuration file and translates it into
// the domain types the optimizer consumes. Every validation failure is fatal
// before the first generation runs.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/betonlab/mixopt/internal/mix"
	"github.com/betonlab/mixopt/internal/opt"
)

// RangeSpec overrides one component's allowed range.
type RangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// BoundsSpec overrides individual component ranges. Absent components keep
// their built-in defaults.
type BoundsSpec struct {
	Cement           *RangeSpec `yaml:"cement"`
	Slag             *RangeSpec `yaml:"slag"`
	FlyAsh           *RangeSpec `yaml:"fly_ash"`
	Water            *RangeSpec `yaml:"water"`
	Superplasticizer *RangeSpec `yaml:"superplasticizer"`
	CoarseAggregate  *RangeSpec `yaml:"coarse_aggregate"`
	FineAggregate    *RangeSpec `yaml:"fine_aggregate"`
	Age              *RangeSpec `yaml:"age"`
}

// TableSpec overrides per-component unit factors (€/kg for costs, kg CO₂/kg
// for emissions). Absent components keep their built-in defaults.
type TableSpec struct {
	Cement           *float64 `yaml:"cement" validate:"omitempty,gte=0"`
	Slag             *float64 `yaml:"slag" validate:"omitempty,gte=0"`
	FlyAsh           *float64 `yaml:"fly_ash" validate:"omitempty,gte=0"`
	Water            *float64 `yaml:"water" validate:"omitempty,gte=0"`
	Superplasticizer *float64 `yaml:"superplasticizer" validate:"omitempty,gte=0"`
	CoarseAggregate  *float64 `yaml:"coarse_aggregate" validate:"omitempty,gte=0"`
	FineAggregate    *float64 `yaml:"fine_aggregate" validate:"omitempty,gte=0"`
}

// ServerSpec configures the HTTP job service.
type ServerSpec struct {
	Addr    string `yaml:"addr" validate:"required"`
	DataDir string `yaml:"data_dir" validate:"required"`
}

// File mirrors the YAML configuration schema. Optimizer, constraints and
// objective sections reuse the domain structs directly, so defaults survive
// partial files: decoding only overwrites keys that are present.
type File struct {
	Bounds      BoundsSpec      `yaml:"bounds"`
	Costs       TableSpec       `yaml:"costs"`
	Emissions   TableSpec       `yaml:"emissions"`
	Optimizer   opt.Config      `yaml:"optimizer"`
	Constraints opt.Constraints `yaml:"constraints"`
	Objective   opt.Objective   `yaml:"objective"`
	Server      ServerSpec      `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *File {
	return &File{
		Optimizer: opt.DefaultConfig(),
		Objective: opt.DefaultObjective(),
		Server: ServerSpec{
			Addr:    ":8080",
			DataDir: defaultDataDir(),
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mixopt"
	}
	return home + "/.mixopt"
}

// Load reads path, layers it over the defaults and validates the result.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate runs the struct tags first, then the domain-level checks that
// tags cannot express (range ordering, objective sanity, GA parameters).
func (f *File) Validate() error {
	if err := validator.New().Struct(f); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := f.MixBounds().Validate(); err != nil {
		return err
	}
	if err := f.OptObjective().Validate(); err != nil {
		return err
	}
	if err := f.Optimizer.Validate(); err != nil {
		return err
	}
	return nil
}

// MixBounds merges the bounds overrides over the defaults.
func (f *File) MixBounds() mix.Bounds {
	b := mix.DefaultBounds()
	overrides := [mix.NumComponents]*RangeSpec{
		mix.Cement:           f.Bounds.Cement,
		mix.Slag:             f.Bounds.Slag,
		mix.FlyAsh:           f.Bounds.FlyAsh,
		mix.Water:            f.Bounds.Water,
		mix.Superplasticizer: f.Bounds.Superplasticizer,
		mix.CoarseAggregate:  f.Bounds.CoarseAggregate,
		mix.FineAggregate:    f.Bounds.FineAggregate,
		mix.Age:              f.Bounds.Age,
	}
	for c, r := range overrides {
		if r != nil {
			b.Ranges[c] = mix.Range{Min: r.Min, Max: r.Max}
		}
	}
	return b
}

// CostTable merges the cost overrides over the default table.
func (f *File) CostTable() mix.CostTable {
	t := mix.DefaultCosts()
	applyTable(t[:], f.Costs)
	return t
}

// EmissionTable merges the emission overrides over the default table.
func (f *File) EmissionTable() mix.EmissionTable {
	t := mix.DefaultEmissions()
	applyTable(t[:], f.Emissions)
	return t
}

func applyTable(t []float64, spec TableSpec) {
	overrides := [mix.NumComponents]*float64{
		mix.Cement:           spec.Cement,
		mix.Slag:             spec.Slag,
		mix.FlyAsh:           spec.FlyAsh,
		mix.Water:            spec.Water,
		mix.Superplasticizer: spec.Superplasticizer,
		mix.CoarseAggregate:  spec.CoarseAggregate,
		mix.FineAggregate:    spec.FineAggregate,
	}
	for c, v := range overrides {
		if v != nil {
			t[c] = *v
		}
	}
}

// OptObjective returns the objective with the merged cost and emission
// tables attached.
func (f *File) OptObjective() opt.Objective {
	obj := f.Objective
	obj.Costs = f.CostTable()
	obj.Emissions = f.EmissionTable()
	return obj
}
