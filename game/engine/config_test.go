package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateParams_Defaults(t *testing.T) {
	if err := ValidateParams(DefaultParams()); err != nil {
		t.Errorf("Expected default params to pass validation, got: %v", err)
	}
}

func TestValidateParams_Nil(t *testing.T) {
	if err := ValidateParams(nil); err == nil {
		t.Error("Expected error for nil params")
	}
}

func TestValidateParams_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(p *Params)
		expectedError string
	}{
		{"missing name", func(p *Params) { p.Name = "" }, "name is required"},
		{"zero field", func(p *Params) { p.FieldHeight = 0 }, "field dimensions must be positive"},
		{"vehicle too wide", func(p *Params) { p.VehicleWidth = 100 }, "vehicle_width must be between"},
		{"obstacle width zero", func(p *Params) { p.ObstacleWidth = 0 }, "obstacle_width must be between"},
		{"vehicle too tall", func(p *Params) { p.VehicleHeight = 690 }, "does not fit"},
		{"negative margin", func(p *Params) { p.CullMargin = -1 }, "margins cannot be negative"},
		{"cone scale", func(p *Params) { p.ConeWidthScale = 1.5 }, "cone scales"},
		{"cone probability", func(p *Params) { p.ConeProbability = 2 }, "cone_probability"},
		{"zero energy", func(p *Params) { p.InitialEnergy = 0 }, "initial_energy must be positive"},
		{"negative pickup", func(p *Params) { p.EnergyPerPickup = -5 }, "energy deltas cannot be negative"},
		{"zero speed", func(p *Params) { p.InitialSpeed = 0 }, "initial_speed must be positive"},
		{"max below initial", func(p *Params) { p.MaxSpeed = 3 }, "max_speed"},
		{"ramp shorter than frame", func(p *Params) { p.SpeedIncreaseIntervalMs = 1 }, "shorter than one frame"},
		{"zero move step", func(p *Params) { p.MoveStep = 0 }, "move_step must be positive"},
		{"zero spawn rate", func(p *Params) { p.ObstacleSpawnRate = 0 }, "spawn rates"},
		{"negative effect", func(p *Params) { p.ShakeMs = -1 }, "effect durations"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			params := DefaultParams()
			test.mutate(params)
			err := ValidateParams(params)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), test.expectedError) {
				t.Errorf("Expected error containing '%s', got: %v", test.expectedError, err)
			}
			if !strings.HasPrefix(err.Error(), "params validation:") {
				t.Errorf("Expected params validation prefix, got: %v", err)
			}
		})
	}
}

func TestParams_Derived(t *testing.T) {
	p := DefaultParams()

	if p.MinVehicleX() != 6.25 {
		t.Errorf("Expected min vehicle x 6.25, got %v", p.MinVehicleX())
	}
	if p.MaxVehicleX() != 93.75 {
		t.Errorf("Expected max vehicle x 93.75, got %v", p.MaxVehicleX())
	}

	p.NominalFrameMs = 20
	if got := p.SpeedRampFrames(); got != 250 {
		t.Errorf("Expected 250 ramp frames at 20ms, got %d", got)
	}
}

func TestParseParams_KeepsDefaults(t *testing.T) {
	params, err := ParseParams([]byte(`{"name": "rush", "initial_speed": 6, "obstacle_spawn_rate": 40}`))
	if err != nil {
		t.Fatalf("Failed to parse params: %v", err)
	}

	if params.Name != "rush" || params.InitialSpeed != 6 || params.ObstacleSpawnRate != 40 {
		t.Errorf("Expected overrides to apply, got %+v", params)
	}
	if params.EnergySpawnRate != 150 || params.MaxSpeed != 12 {
		t.Errorf("Expected unspecified fields to keep defaults, got spawn %d max %v", params.EnergySpawnRate, params.MaxSpeed)
	}
}

func TestParseParams_Errors(t *testing.T) {
	if _, err := ParseParams([]byte(`{not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if _, err := ParseParams([]byte(`{"max_speed": 1}`)); err == nil {
		t.Error("Expected validation error for max speed below initial speed")
	}
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "night.json")
	if err := os.WriteFile(path, []byte(`{"name": "night", "description": "Night shift", "energy_drain_per_second": 3}`), 0644); err != nil {
		t.Fatalf("Failed to write params: %v", err)
	}

	params, err := LoadParams(path)
	if err != nil {
		t.Fatalf("Failed to load params: %v", err)
	}
	if params.Name != "night" || params.EnergyDrainPerSecond != 3 {
		t.Errorf("Expected night params with drain 3, got %s/%d", params.Name, params.EnergyDrainPerSecond)
	}

	if _, err := LoadParams(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
