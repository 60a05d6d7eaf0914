// Package config provides parameter preset management for MUPOL Patrol.
//
// The config package handles:
//   - Loading parameter presets from JSON files
//   - Preset validation through engine.ValidateParams
//   - Default preset selection with a built-in fallback
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets are JSON files in the configs directory, named <id>.json. Every
// field of engine.Params may be set; fields left out keep the classic
// value, so a preset only lists what it changes:
//
//	{
//	  "name": "rush",
//	  "description": "Faster traffic from the first second",
//	  "initial_speed": 6,
//	  "obstacle_spawn_rate": 50
//	}
//
// Default Selection:
//
// classic.json is the default when present. Otherwise the first valid
// preset in the directory is used, and an empty directory falls back to
// engine.DefaultParams.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	params, err := manager.LoadConfig("rush")
//	presets, err := manager.ListConfigs()
package config
