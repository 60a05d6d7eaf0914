package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mupol-patrol/game/engine"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if contains(err, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeTempConfig(t, `{
		"name": "Test Preset",
		"description": "Faster traffic",
		"initial_speed": 5,
		"obstacle_spawn_rate": 60
	}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid config, but got errors: %v", result.Errors)
	}

	if result.File != "preset.json" {
		t.Errorf("Expected file name preset.json, got %s", result.File)
	}

	if !hasError(result, "✓ Dodge") {
		t.Errorf("Expected dodge info line, got %v", result.Errors)
	}
}

func TestValidateConfig_ShippedPresets(t *testing.T) {
	files, err := filepath.Glob("../configs/*.json")
	if err != nil {
		t.Fatalf("Failed to list presets: %v", err)
	}
	if len(files) == 0 {
		t.Skip("Skipping test - configs directory not found")
	}

	for _, file := range files {
		result := validateConfig(file)
		if !result.Valid {
			t.Errorf("%s: expected valid preset, got %v", result.File, result.Errors)
		}
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeTempConfig(t, `{"name": "test", invalid json}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config due to bad JSON")
	}
	if !hasError(result, "Invalid JSON") {
		t.Error("Expected 'Invalid JSON' error")
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateConfig_UnknownKeys(t *testing.T) {
	path := writeTempConfig(t, `{
		"name": "Typo",
		"description": "Misspelled field",
		"initial_sped": 5,
		"max_fuel": 10
	}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config due to unknown keys")
	}
	if !hasError(result, "Unknown keys: initial_sped, max_fuel") {
		t.Errorf("Expected sorted unknown keys, got %v", result.Errors)
	}
}

func TestValidateConfig_MissingName(t *testing.T) {
	path := writeTempConfig(t, `{"description": "No name"}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config without a name")
	}
	if !hasError(result, "Missing name") {
		t.Errorf("Expected 'Missing name' error, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidParameters(t *testing.T) {
	path := writeTempConfig(t, `{
		"name": "Broken",
		"description": "Max below initial",
		"initial_speed": 8,
		"max_speed": 4
	}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config due to speed range")
	}
	if !hasError(result, "max_speed") {
		t.Errorf("Expected max_speed error, got %v", result.Errors)
	}
}

func TestValidateDodge(t *testing.T) {
	t.Run("classic is dodgeable", func(t *testing.T) {
		result := validateDodge(engine.DefaultParams())
		if !result.Valid {
			t.Errorf("Expected dodgeable params, got %v", result.Errors)
		}
	})

	t.Run("too fast", func(t *testing.T) {
		p := engine.DefaultParams()
		p.MaxSpeed = 300
		p.MoveStep = 1

		result := validateDodge(p)
		if result.Valid {
			t.Error("Expected dodge failure at extreme speed")
		}
		if !hasError(result, "Dodge failure") {
			t.Errorf("Expected 'Dodge failure' error, got %v", result.Errors)
		}
	})

	t.Run("no room to pass", func(t *testing.T) {
		p := engine.DefaultParams()
		p.VehicleWidth = 50
		p.ObstacleWidth = 50

		result := validateDodge(p)
		if result.Valid {
			t.Error("Expected dodge failure when widths fill the road")
		}
		if !hasError(result, "cannot pass each other") {
			t.Errorf("Expected width error, got %v", result.Errors)
		}
	})
}

// Helper function to check if a string contains a substring
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
