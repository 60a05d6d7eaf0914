// Package engine provides the simulation core of the MUPOL patrol game.
//
// The engine package implements the game mechanics including:
//   - Object spawning on fixed frame cadences
//   - Scrolling, culling and axis-aligned collision detection
//   - Energy and score bookkeeping with a real-time drain
//   - The frame-count based difficulty ramp
//   - Serializable run state, including the spawn RNG
//
// Core Types:
//
// The Engine interface defines the main contract for simulation operations,
// implemented by GameEngine. RunState is the authoritative state of a
// session, Params holds the named constants of the game and FrameReport
// describes what a single frame did. Step is the pure per-frame function
// the engine is built on.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultParams(), engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.StartSession()
//	state, report := gameEngine.Advance(16.7, engine.SteerLeft)
//
// Game Rules:
//
// The player steers a police car left and right along the bottom of a
// scrolling lane. Civilian cars and cones cost energy on contact, shields
// restore it, and energy drains every second. Score grows once per second
// by the current speed. The run ends when energy reaches zero.
package engine
