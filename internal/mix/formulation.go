package mix

import "math"

// Component identifies one constituent of a concrete mix.
type Component int

const (
	Cement Component = iota
	Slag
	FlyAsh
	Water
	Superplasticizer
	CoarseAggregate
	FineAggregate
	Age

	// NumComponents is the fixed dimensionality of the design space.
	NumComponents
)

// componentNames follows the vector layout order.
var componentNames = [NumComponents]string{
	"cement",
	"slag",
	"fly_ash",
	"water",
	"superplasticizer",
	"coarse_aggregate",
	"fine_aggregate",
	"age",
}

// String returns the snake_case name used in configs and JSON.
func (c Component) String() string {
	if c < 0 || c >= NumComponents {
		return "unknown"
	}
	return componentNames[c]
}

// Components returns all components in vector order.
func Components() []Component {
	out := make([]Component, NumComponents)
	for i := range out {
		out[i] = Component(i)
	}
	return out
}

// binderEpsilon guards ratio denominators against a zero binder sum.
const binderEpsilon = 1e-5

// Formulation is a candidate concrete mix: constituent dosages in kg/m³
// plus curing age in days.
type Formulation struct {
	Cement           float64 `json:"cement"`
	Slag             float64 `json:"slag"`
	FlyAsh           float64 `json:"flyAsh"`
	Water            float64 `json:"water"`
	Superplasticizer float64 `json:"superplasticizer"`
	CoarseAggregate  float64 `json:"coarseAggregate"`
	FineAggregate    float64 `json:"fineAggregate"`
	Age              float64 `json:"age"`
}

// Vector encodes the formulation as a fixed-length slice in component order.
// It is the exact inverse of Decode for in-bounds formulations.
func (f Formulation) Vector() []float64 {
	return []float64{
		f.Cement,
		f.Slag,
		f.FlyAsh,
		f.Water,
		f.Superplasticizer,
		f.CoarseAggregate,
		f.FineAggregate,
		f.Age,
	}
}

// Get returns the dosage of a single component.
func (f Formulation) Get(c Component) float64 {
	return f.Vector()[c]
}

// TotalBinder is the sum of cementitious components.
func (f Formulation) TotalBinder() float64 {
	return f.Cement + f.Slag + f.FlyAsh
}

// WaterBinderRatio is the effective water to binder ratio (E/L in EN 206
// terms). Well-defined for zero binder through a small epsilon.
func (f Formulation) WaterBinderRatio() float64 {
	return f.Water / (f.TotalBinder() + binderEpsilon)
}

// SubstitutionFraction is the share of supplementary binders (slag and fly
// ash) in the total binder.
func (f Formulation) SubstitutionFraction() float64 {
	return (f.Slag + f.FlyAsh) / (f.TotalBinder() + binderEpsilon)
}

// AggregateRatio is the mass share of aggregates in the total mix (age
// excluded, it is not a mass).
func (f Formulation) AggregateRatio() float64 {
	total := f.Cement + f.Slag + f.FlyAsh + f.Water + f.CoarseAggregate + f.FineAggregate
	return (f.CoarseAggregate + f.FineAggregate) / (total + binderEpsilon)
}

// fromVector builds a formulation without bounds enforcement.
func fromVector(vec []float64) Formulation {
	var f Formulation
	if len(vec) < int(NumComponents) {
		return f
	}
	f.Cement = vec[Cement]
	f.Slag = vec[Slag]
	f.FlyAsh = vec[FlyAsh]
	f.Water = vec[Water]
	f.Superplasticizer = vec[Superplasticizer]
	f.CoarseAggregate = vec[CoarseAggregate]
	f.FineAggregate = vec[FineAggregate]
	f.Age = vec[Age]
	return f
}

func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
