package mix

import "fmt"

// Range is the allowed [Min, Max] interval for one component.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Span returns the width of the range.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Bounds defines valid dosage ranges for every mix component.
type Bounds struct {
	Ranges [NumComponents]Range
}

// DefaultBounds returns the engineering bounds the optimizer searches within:
// EN 206 typical dosages for binders, water and aggregates, and 1-365 days
// for test age.
func DefaultBounds() Bounds {
	var b Bounds
	b.Ranges[Cement] = Range{Min: 150, Max: 550}
	b.Ranges[Slag] = Range{Min: 0, Max: 250}
	b.Ranges[FlyAsh] = Range{Min: 0, Max: 200}
	b.Ranges[Water] = Range{Min: 120, Max: 220}
	b.Ranges[Superplasticizer] = Range{Min: 0, Max: 20}
	b.Ranges[CoarseAggregate] = Range{Min: 800, Max: 1200}
	b.Ranges[FineAggregate] = Range{Min: 600, Max: 950}
	b.Ranges[Age] = Range{Min: 1, Max: 365}
	return b
}

// InvalidBoundsError reports a configured range with Min > Max.
// It is a configuration error, surfaced before any generation runs.
type InvalidBoundsError struct {
	Component Component
	Range     Range
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("invalid bounds for %s: min %.3f > max %.3f",
		e.Component, e.Range.Min, e.Range.Max)
}

// Validate checks every range for Min <= Max.
func (b Bounds) Validate() error {
	for c, r := range b.Ranges {
		if r.Min > r.Max {
			return &InvalidBoundsError{Component: Component(c), Range: r}
		}
	}
	return nil
}

// Decode converts a raw parameter vector into a formulation, clamping every
// component into its range. The result always satisfies the bounds.
func (b Bounds) Decode(vec []float64) Formulation {
	f := fromVector(vec)
	return b.Clamp(f)
}

// Clamp returns a copy of f with every component forced into its range.
func (b Bounds) Clamp(f Formulation) Formulation {
	vec := f.Vector()
	for i := range vec {
		vec[i] = clamp(vec[i], b.Ranges[i].Min, b.Ranges[i].Max)
	}
	return fromVector(vec)
}

// Contains reports whether every component of f lies within its range.
func (b Bounds) Contains(f Formulation) bool {
	vec := f.Vector()
	for i, v := range vec {
		if v < b.Ranges[i].Min || v > b.Ranges[i].Max {
			return false
		}
	}
	return true
}

// Vectors returns the lower and upper bound vectors in component order,
// the shape scalar optimizers operate on.
func (b Bounds) Vectors() (lower, upper []float64) {
	lower = make([]float64, NumComponents)
	upper = make([]float64, NumComponents)
	for i, r := range b.Ranges {
		lower[i] = r.Min
		upper[i] = r.Max
	}
	return lower, upper
}
