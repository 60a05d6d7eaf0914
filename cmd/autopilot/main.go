// Command autopilot drives patrol sessions through the REST API.
//
// It plans a short chunk of frames with a lookahead strategy, sends the
// chunk as one bulk advance and replans from the returned state, restarting
// the run until it survives long enough or reaches the target score.
package main

import (
	"bytes"
	"flag"
	"log"
	"os"
	"time"

	"github.com/wricardo/mupol-patrol/game/engine"
)

const sessionFile = ".session"

type attemptConfig struct {
	MaxFrames   int
	ChunkFrames int
	TargetScore int
	Verbose     bool
	Delay       time.Duration
}

type attemptResult struct {
	Frames   int
	Score    int
	Energy   int
	Hits     int
	Pickups  int
	GameOver bool
}

// succeeded reports whether the attempt met the goal: the target score
// when one is set, otherwise surviving every frame
func (r attemptResult) succeeded(cfg attemptConfig) bool {
	if cfg.TargetScore > 0 {
		return r.Score >= cfg.TargetScore
	}
	return !r.GameOver && r.Frames >= cfg.MaxFrames
}

// runAttempt starts a fresh run and drives it until it ends or meets the goal
func runAttempt(client *Client, strategy *Strategy, cfg attemptConfig) (attemptResult, error) {
	strategy.Reset()

	state, err := client.Start()
	if err != nil {
		return attemptResult{}, err
	}

	var result attemptResult
	for state.Phase == engine.PhasePlaying && result.Frames < cfg.MaxFrames {
		if cfg.TargetScore > 0 && state.Score >= cfg.TargetScore {
			break
		}

		n := cfg.ChunkFrames
		if remaining := cfg.MaxFrames - result.Frames; n > remaining {
			n = remaining
		}

		bulk, err := client.BulkAdvance(strategy.NextFrames(state, n), false)
		if err != nil {
			return result, err
		}
		result.Frames += bulk.FramesExecuted
		result.Hits += bulk.Hits
		result.Pickups += bulk.Pickups
		state = bulk.State

		if cfg.Verbose && bulk.Hits > 0 {
			log.Printf("Frame %d: hit, energy %d/%d", state.Frame, state.Energy, state.MaxEnergy)
		}
		if cfg.Delay > 0 {
			time.Sleep(cfg.Delay)
		}
		if bulk.FramesExecuted == 0 {
			break
		}
	}

	result.Score = state.Score
	result.Energy = state.Energy
	result.GameOver = state.Phase == engine.PhaseGameOver
	return result, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Patrol server URL")
	configName := flag.String("config", "", "Preset for a new session (classic, rush, night)")
	continueSession := flag.String("continue", "", "Resume an existing session by ID")
	maxFrames := flag.Int("max-frames", 6000, "Frames per attempt before it counts as survived")
	maxAttempts := flag.Int("max-attempts", 10, "Maximum attempts before giving up")
	chunkFrames := flag.Int("chunk", 10, "Frames planned per bulk advance")
	targetScore := flag.Int("target-score", 0, "Stop once a run reaches this score (0 = survive max-frames)")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between chunks in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to patrol server at %s", *serverURL)
	client := NewClient(*serverURL)

	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	var params *engine.Params
	if savedSessionID != "" {
		log.Printf("🔄 Resuming session: %s", savedSessionID)
		info, err := client.Resume(savedSessionID)
		if err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			log.Printf("Creating new session...")
		} else {
			params = info.Params
		}
	}

	if params == nil {
		info, err := client.CreateSession(*configName)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		params = info.Params
		log.Printf("✨ Session created: %s (%s)", info.ID, info.ConfigName)

		if err := os.WriteFile(sessionFile, []byte(info.ID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}
	if params == nil {
		params = engine.DefaultParams()
	}

	cfg := attemptConfig{
		MaxFrames:   *maxFrames,
		ChunkFrames: *chunkFrames,
		TargetScore: *targetScore,
		Verbose:     *verbose,
		Delay:       time.Duration(*delayMs) * time.Millisecond,
	}
	if cfg.ChunkFrames <= 0 {
		cfg.ChunkFrames = 10
	}

	strategy := NewStrategy(params)
	best := attemptResult{}
	for attempt := 1; attempt <= *maxAttempts; attempt++ {
		log.Printf("\n=== 🚓 Attempt %d/%d ===", attempt, *maxAttempts)

		result, err := runAttempt(client, strategy, cfg)
		if err != nil {
			log.Printf("Attempt %d failed: %v", attempt, err)
			continue
		}
		log.Printf("Attempt %d: Frames=%d, Score=%d, Energy=%d, Hits=%d, Shields=%d, Plans=%d",
			attempt, result.Frames, result.Score, result.Energy, result.Hits, result.Pickups, strategy.Replans())

		if result.Score > best.Score {
			best = result
		}
		if result.succeeded(cfg) {
			log.Printf("\n🎉 Patrol complete in attempt %d: %d frames, score %d", attempt, result.Frames, result.Score)
			log.Printf("Session: %s", client.SessionID())
			os.Exit(0)
		}
	}

	log.Printf("\n❌ Goal not reached after %d attempts (best score %d)", *maxAttempts, best.Score)
	os.Exit(1)
}
