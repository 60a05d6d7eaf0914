// Command analyze prints the difficulty curve of every parameter preset in
// the configs directory: how fast the speed ramps, how dense traffic and
// shields are, and how long the energy lasts. Presets whose shields cannot
// keep up with the drain, or whose speed never rises, are flagged.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/wricardo/mupol-patrol/game/config"
	"github.com/wricardo/mupol-patrol/game/engine"
)

// Analysis is the derived difficulty curve of one parameter set
type Analysis struct {
	RampFrames          int
	SpeedSteps          int
	FramesToMaxSpeed    int
	SecondsToMaxSpeed   float64
	ObstaclesPerMinute  float64
	ShieldsPerMinute    float64
	HitsSurvivable      int
	DrainSeconds        float64
	ShieldEnergyPerMin  float64
	DrainEnergyPerMin   float64
	ReactionFramesStart int
	ReactionFramesMax   int
}

func main() {
	configDir := flag.String("config-dir", "configs", "Directory containing parameter presets")
	flag.Parse()

	manager, err := config.NewManager(*configDir)
	if err != nil {
		fmt.Printf("Error loading presets: %v\n", err)
		os.Exit(1)
	}

	presets, err := manager.ListConfigs()
	if err != nil {
		fmt.Printf("Error listing presets: %v\n", err)
		os.Exit(1)
	}

	for _, preset := range presets {
		fmt.Printf("\n=== Analyzing %s ===\n", preset.Filename)
		params, err := manager.LoadConfig(preset.ConfigID)
		if err != nil {
			fmt.Printf("Error loading preset: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, params, analyzeParams(params))
	}
}

// analyzeParams derives the difficulty curve from a parameter set
func analyzeParams(p *engine.Params) Analysis {
	framesPerMinute := 60000 / p.NominalFrameMs

	a := Analysis{
		RampFrames:        p.SpeedRampFrames(),
		DrainEnergyPerMin: float64(p.EnergyDrainPerSecond * 60),
	}

	if p.SpeedIncreaseAmount > 0 {
		a.SpeedSteps = int(math.Ceil((p.MaxSpeed - p.InitialSpeed) / p.SpeedIncreaseAmount))
	}
	a.FramesToMaxSpeed = a.SpeedSteps * a.RampFrames
	a.SecondsToMaxSpeed = float64(a.FramesToMaxSpeed) * p.NominalFrameMs / 1000

	if p.ObstacleSpawnRate > 0 {
		a.ObstaclesPerMinute = framesPerMinute / float64(p.ObstacleSpawnRate)
	}
	if p.EnergySpawnRate > 0 {
		a.ShieldsPerMinute = framesPerMinute / float64(p.EnergySpawnRate)
	}
	a.ShieldEnergyPerMin = a.ShieldsPerMinute * float64(p.EnergyPerPickup)

	// A hit that brings energy to 0 ends the run
	if p.EnergyCostPerHit > 0 {
		a.HitsSurvivable = (p.InitialEnergy - 1) / p.EnergyCostPerHit
	}
	if p.EnergyDrainPerSecond > 0 {
		a.DrainSeconds = float64(p.InitialEnergy) / float64(p.EnergyDrainPerSecond)
	}

	// Frames between an obstacle appearing and reaching the vehicle
	distance := engine.VehicleRect(p, engine.VehicleStartX).Top
	a.ReactionFramesStart = engine.FramesUntil(distance, p.InitialSpeed)
	a.ReactionFramesMax = engine.FramesUntil(distance, p.MaxSpeed)

	return a
}

func printAnalysis(w io.Writer, p *engine.Params, a Analysis) {
	fmt.Fprintf(w, "Name: %s\n", p.Name)
	fmt.Fprintf(w, "Speed: %g → %g (+%g every %d frames)\n", p.InitialSpeed, p.MaxSpeed, p.SpeedIncreaseAmount, a.RampFrames)
	fmt.Fprintf(w, "Max speed after: %d frames (%.0fs)\n", a.FramesToMaxSpeed, a.SecondsToMaxSpeed)
	fmt.Fprintf(w, "Obstacles per minute: %.1f\n", a.ObstaclesPerMinute)
	fmt.Fprintf(w, "Shields per minute: %.1f\n", a.ShieldsPerMinute)
	fmt.Fprintf(w, "Hits survivable from full energy: %d\n", a.HitsSurvivable)
	fmt.Fprintf(w, "Drain alone empties energy in: %.0fs\n", a.DrainSeconds)
	fmt.Fprintf(w, "Reaction frames: %d at start, %d at max speed\n", a.ReactionFramesStart, a.ReactionFramesMax)

	if a.ShieldEnergyPerMin < a.DrainEnergyPerMin {
		fmt.Fprintf(w, "⚠️  WARNING: shields restore %.0f energy/min but drain takes %.0f\n", a.ShieldEnergyPerMin, a.DrainEnergyPerMin)
	} else {
		fmt.Fprintf(w, "✅ Collecting every shield outpaces the drain (+%.0f vs -%.0f energy/min)\n", a.ShieldEnergyPerMin, a.DrainEnergyPerMin)
	}

	if a.SpeedSteps == 0 || a.RampFrames == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: speed never increases\n")
	}
}
