package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/betonlab/mixopt/internal/mix"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
optimizer:
  population_size: 60
constraints:
  min_strength: 35
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Optimizer.PopulationSize != 60 {
		t.Errorf("PopulationSize = %d, want 60", cfg.Optimizer.PopulationSize)
	}
	// Keys absent from the file keep their defaults
	if cfg.Optimizer.MaxGenerations != 50 {
		t.Errorf("MaxGenerations = %d, want default 50", cfg.Optimizer.MaxGenerations)
	}
	if cfg.Constraints.MinStrength != 35 {
		t.Errorf("MinStrength = %f, want 35", cfg.Constraints.MinStrength)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want default :8080", cfg.Server.Addr)
	}
}

func TestLoadBoundsAndTableOverrides(t *testing.T) {
	path := writeConfig(t, `
bounds:
  cement: {min: 200, max: 450}
costs:
  cement: 0.15
emissions:
  slag: 0.08
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := cfg.MixBounds()
	if got := bounds.Ranges[mix.Cement]; got.Min != 200 || got.Max != 450 {
		t.Errorf("cement range = %+v, want [200, 450]", got)
	}
	if got := bounds.Ranges[mix.Water]; got != mix.DefaultBounds().Ranges[mix.Water] {
		t.Errorf("water range changed without an override: %+v", got)
	}

	if got := cfg.CostTable()[mix.Cement]; got != 0.15 {
		t.Errorf("cement cost = %f, want 0.15", got)
	}
	if got := cfg.CostTable()[mix.Slag]; got != mix.DefaultCosts()[mix.Slag] {
		t.Errorf("slag cost changed without an override: %f", got)
	}
	if got := cfg.EmissionTable()[mix.Slag]; got != 0.08 {
		t.Errorf("slag emission = %f, want 0.08", got)
	}

	obj := cfg.OptObjective()
	if obj.Costs[mix.Cement] != 0.15 {
		t.Error("objective did not pick up the merged cost table")
	}
}

func TestLoadRejectsInvertedBounds(t *testing.T) {
	path := writeConfig(t, `
bounds:
  water: {min: 220, max: 120}
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for inverted water bounds")
	}
}

func TestLoadRejectsBadOptimizer(t *testing.T) {
	path := writeConfig(t, `
optimizer:
  population_size: 1
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for population size 1")
	}
}

func TestLoadRejectsNegativeCost(t *testing.T) {
	path := writeConfig(t, `
costs:
  cement: -0.5
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative cement cost")
	}
}

func TestLoadRejectsBadObjective(t *testing.T) {
	path := writeConfig(t, `
objective:
  cost_weight: 0
  co2_weight: 0
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for zero objective weights")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "optimizer: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
