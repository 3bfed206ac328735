package mix

import (
	"errors"
	"math"
	"testing"
)

func TestVectorRoundTrip(t *testing.T) {
	bounds := DefaultBounds()

	// Strictly inside every range
	f := Formulation{
		Cement:           350,
		Slag:             60,
		FlyAsh:           20,
		Water:            175,
		Superplasticizer: 4,
		CoarseAggregate:  1070,
		FineAggregate:    710,
		Age:              28,
	}

	got := bounds.Decode(f.Vector())
	if got != f {
		t.Errorf("Decode(Vector()) = %+v, want %+v", got, f)
	}
}

func TestDecodeClampsOutOfRange(t *testing.T) {
	bounds := DefaultBounds()

	vec := make([]float64, NumComponents)
	for i := range vec {
		vec[i] = -1000
	}
	f := bounds.Decode(vec)
	for i, v := range f.Vector() {
		if v != bounds.Ranges[i].Min {
			t.Errorf("component %s = %f, want clamped to min %f",
				Component(i), v, bounds.Ranges[i].Min)
		}
	}

	for i := range vec {
		vec[i] = 1e9
	}
	f = bounds.Decode(vec)
	for i, v := range f.Vector() {
		if v != bounds.Ranges[i].Max {
			t.Errorf("component %s = %f, want clamped to max %f",
				Component(i), v, bounds.Ranges[i].Max)
		}
	}
}

func TestBoundsValidate(t *testing.T) {
	b := DefaultBounds()
	if err := b.Validate(); err != nil {
		t.Fatalf("default bounds should be valid, got %v", err)
	}

	b.Ranges[Water] = Range{Min: 220, Max: 120}
	err := b.Validate()
	if err == nil {
		t.Fatal("expected error for min > max")
	}
	var ibe *InvalidBoundsError
	if !errors.As(err, &ibe) {
		t.Fatalf("expected *InvalidBoundsError, got %T", err)
	}
	if ibe.Component != Water {
		t.Errorf("expected water component in error, got %s", ibe.Component)
	}
}

func TestDerivedRatios(t *testing.T) {
	f := Formulation{Cement: 300, Slag: 100, FlyAsh: 0, Water: 160,
		CoarseAggregate: 1000, FineAggregate: 700, Age: 28}

	if got := f.TotalBinder(); got != 400 {
		t.Errorf("TotalBinder = %f, want 400", got)
	}
	if got := f.WaterBinderRatio(); math.Abs(got-0.4) > 1e-6 {
		t.Errorf("WaterBinderRatio = %f, want 0.4", got)
	}
	if got := f.SubstitutionFraction(); math.Abs(got-0.25) > 1e-6 {
		t.Errorf("SubstitutionFraction = %f, want 0.25", got)
	}

	aggr := f.AggregateRatio()
	want := 1700.0 / 2260.0
	if math.Abs(aggr-want) > 1e-3 {
		t.Errorf("AggregateRatio = %f, want %f", aggr, want)
	}
}

func TestRatiosWellDefinedWithZeroBinder(t *testing.T) {
	var f Formulation
	f.Water = 150

	got := f.WaterBinderRatio()
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("WaterBinderRatio with zero binder = %f, want finite", got)
	}
}

func TestCostAndCO2(t *testing.T) {
	costs := DefaultCosts()
	emissions := DefaultEmissions()

	f := Formulation{Cement: 100, Age: 365}

	// Only cement contributes; age must not
	if got, want := costs.Cost(f), 12.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost = %f, want %f", got, want)
	}
	if got, want := emissions.CO2(f), 90.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("CO2 = %f, want %f", got, want)
	}
}

func TestPresetsWithinDefaultBounds(t *testing.T) {
	bounds := DefaultBounds()
	for _, p := range Presets() {
		if !bounds.Contains(p.Formulation) {
			t.Errorf("preset %q outside default bounds: %+v", p.Name, p.Formulation)
		}
	}
}

func TestPresetByName(t *testing.T) {
	p, ok := PresetByName("Low Carbon")
	if !ok {
		t.Fatal("expected Low Carbon preset to exist")
	}
	if p.Formulation.FlyAsh == 0 {
		t.Error("Low Carbon preset should use fly ash")
	}

	if _, ok := PresetByName("nonexistent"); ok {
		t.Error("expected lookup miss for unknown preset")
	}
}
