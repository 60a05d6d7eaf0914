// Package service provides the business logic layer for MUPOL Patrol.
//
// The service package implements:
//   - Multi-session management, one simulation engine per session
//   - Run control: start, steer, single and bulk frame advance
//   - Real-time live loops that stream every frame to a Publisher
//   - Event history tracking (pickups, hits, speed ups, game over)
//   - Parameter preset access
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and persistence.
// ConfigManager loads and validates parameter presets.
//
// Concurrency:
//
// Every engine call of a session happens with the session locked. While a
// live loop drives a session, Steer only queues the direction; the loop
// consumes it at the start of the next frame. Manual Advance and
// BulkAdvance are rejected with ErrLiveAlreadyRunning in that state.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithPublisher(hub))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService.StartSession(ctx, info.ID)
//	result, err := gameService.Advance(ctx, info.ID, 16.7, "left")
package service
