// Command validate provides a small CLI that validates parameter preset JSON
// files in the ../configs directory. It checks:
//   - JSON structure and unknown keys (usually typos)
//   - The merged parameters pass engine validation
//   - A display name and description are present
//   - Dodgeability: at max speed, a car spawned straight ahead can still be
//     avoided by steering one step per frame
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mupol-patrol/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// knownKeys lists every JSON key a preset may set
func knownKeys() map[string]bool {
	data, _ := json.Marshal(engine.DefaultParams())
	var fields map[string]json.RawMessage
	json.Unmarshal(data, &fields)

	keys := make(map[string]bool, len(fields))
	for k := range fields {
		keys[k] = true
	}
	return keys
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	known := knownKeys()
	var unknown []string
	for key := range fields {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Unknown keys: %s", strings.Join(unknown, ", ")))
	}

	if _, ok := fields["name"]; !ok {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing name")
	}
	if _, ok := fields["description"]; !ok {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing description")
	}

	params, err := engine.ParseParams(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid parameters: %v", err))
		return result
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Energy: %d start, -%d per hit, +%d per shield, -%d/s", params.InitialEnergy, params.EnergyCostPerHit, params.EnergyPerPickup, params.EnergyDrainPerSecond),
		fmt.Sprintf("✓ Speed: %g → %g, +%g every %d frames", params.InitialSpeed, params.MaxSpeed, params.SpeedIncreaseAmount, params.SpeedRampFrames()))

	dodge := validateDodge(params)
	if !dodge.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, dodge.Errors...)

	return result
}

// validateDodge checks that an obstacle spawned directly in front of the
// vehicle can be avoided at max speed when steering one step per frame
func validateDodge(p *engine.Params) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if p.VehicleWidth+p.ObstacleWidth >= 100 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Dodge failure: vehicle (%g%%) and car (%g%%) cannot pass each other", p.VehicleWidth, p.ObstacleWidth))
		return result
	}

	// Centre-to-centre distance that clears the overlap
	clearance := (p.VehicleWidth + p.ObstacleWidth) / 2
	stepsNeeded := int(math.Ceil(clearance / p.MoveStep))

	// The car spawns with its bottom edge at y=0
	distance := engine.VehicleRect(p, engine.VehicleStartX).Top
	framesAvailable := engine.FramesUntil(distance, p.MaxSpeed)

	if stepsNeeded > framesAvailable {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Dodge failure: %d steps needed but only %d frames at max speed", stepsNeeded, framesAvailable))
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Dodge: %d steps needed, %d frames available at max speed", stepsNeeded, framesAvailable))
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
