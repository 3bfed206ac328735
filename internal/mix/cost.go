package mix

// CostTable holds material unit costs in €/kg. Age carries no cost.
type CostTable [NumComponents]float64

// EmissionTable holds embodied carbon factors in kg CO₂ per kg of material.
type EmissionTable [NumComponents]float64

// DefaultCosts returns market unit costs for each constituent.
func DefaultCosts() CostTable {
	var t CostTable
	t[Cement] = 0.12
	t[Slag] = 0.04
	t[FlyAsh] = 0.03
	t[Water] = 0.0001
	t[Superplasticizer] = 2.5
	t[CoarseAggregate] = 0.015
	t[FineAggregate] = 0.015
	return t
}

// DefaultEmissions returns embodied CO₂ factors per EN 15804 inventories
// (cement ~900 kg CO₂/t dominates; supplementary binders are near-neutral).
func DefaultEmissions() EmissionTable {
	var t EmissionTable
	t[Cement] = 0.9
	t[Slag] = 0.05
	t[FlyAsh] = 0.02
	t[Water] = 0.0001
	t[Superplasticizer] = 0.5
	t[CoarseAggregate] = 0.005
	t[FineAggregate] = 0.005
	return t
}

// Cost computes the material cost of one cubic meter in euros.
func (t CostTable) Cost(f Formulation) float64 {
	return dot(t[:], f)
}

// CO2 computes the carbon footprint of one cubic meter in kg CO₂.
func (t EmissionTable) CO2(f Formulation) float64 {
	return dot(t[:], f)
}

// dot multiplies per-unit factors with dosages. Age is a duration, not a
// mass, and never contributes.
func dot(factors []float64, f Formulation) float64 {
	vec := f.Vector()
	var sum float64
	for i, factor := range factors {
		if Component(i) == Age {
			continue
		}
		sum += factor * vec[i]
	}
	return sum
}
