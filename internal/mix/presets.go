package mix

// Preset is a named reference formulation with its intended strength class
// and exposure range.
type Preset struct {
	Name        string
	Class       string
	Exposure    string
	Description string
	Formulation Formulation
}

// Presets returns the built-in reference formulations, ordered from standard
// to specialty mixes.
func Presets() []Preset {
	return []Preset{
		{
			Name:        "C25/30 Standard",
			Class:       "C25/30",
			Exposure:    "XC1-XC2",
			Description: "Standard mix for common building works",
			Formulation: Formulation{Cement: 280, Water: 180, CoarseAggregate: 1100, FineAggregate: 750, Age: 28},
		},
		{
			Name:        "C30/37 Reinforced",
			Class:       "C30/37",
			Exposure:    "XC3-XC4",
			Description: "Reinforced concrete for structural and civil works",
			Formulation: Formulation{Cement: 320, Slag: 40, Water: 170, Superplasticizer: 3, CoarseAggregate: 1080, FineAggregate: 730, Age: 28},
		},
		{
			Name:        "C35/45 High Performance",
			Class:       "C35/45",
			Exposure:    "XD1-XD2",
			Description: "High performance mix for demanding structures",
			Formulation: Formulation{Cement: 380, Slag: 50, Water: 165, Superplasticizer: 5, CoarseAggregate: 1050, FineAggregate: 700, Age: 28},
		},
		{
			Name:        "C50/60 Very High Performance",
			Class:       "C50/60",
			Exposure:    "XD3-XS1",
			Description: "Very high performance mix for bridge decks and prestress",
			Formulation: Formulation{Cement: 450, Slag: 80, Water: 150, Superplasticizer: 10, CoarseAggregate: 1000, FineAggregate: 650, Age: 28},
		},
		{
			Name:        "Maritime Durable",
			Class:       "C40/50",
			Exposure:    "XS2-XS3",
			Description: "Seawater-resistant mix with 60% slag substitution",
			Formulation: Formulation{Cement: 250, Slag: 150, Water: 160, Superplasticizer: 4, CoarseAggregate: 1070, FineAggregate: 715, Age: 28},
		},
		{
			Name:        "Low Carbon",
			Class:       "C25/30",
			Exposure:    "XC1",
			Description: "Low embodied carbon mix with fly ash substitution",
			Formulation: Formulation{Cement: 200, FlyAsh: 120, Water: 175, Superplasticizer: 3, CoarseAggregate: 1120, FineAggregate: 760, Age: 28},
		},
		{
			Name:        "Self Compacting",
			Class:       "C35/45",
			Exposure:    "XC3",
			Description: "Self-compacting mix for complex formwork",
			Formulation: Formulation{Cement: 400, Slag: 100, Water: 180, Superplasticizer: 12, CoarseAggregate: 850, FineAggregate: 850, Age: 28},
		},
	}
}

// PresetByName returns the preset with the given name.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
