// Package websocket provides WebSocket transport for MUPOL Patrol.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Frame streaming through the service Publisher hook
//   - Per-client encoding (JSON text or msgpack binary frames)
//   - Steering commands from clients
//
// Architecture:
//
// A central Hub owns every connection. Registration, broadcasts and
// per-client replies all go through channels served by Hub.Run, so the
// client map is only touched by that goroutine. Each connection has a
// read pump and a write pump.
//
// Message Protocol:
//
// Outgoing messages carry the session ID, an event name, the run state,
// the hit/shake effect flags and the events of the frame:
//
//	{"session_id": "ab12", "event": "state_update", "state": {...},
//	 "effects": {"hit": true, "shake": true}, "events": [...]}
//
// Clients connecting with ?encoding=msgpack get the same structure as
// msgpack binary frames. Incoming commands use the client's encoding:
//
//	{"type": "steer", "direction": "left"}
//
// Go clients can build commands with EncodeCommand and read frames with
// DecodeMessages.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetSteerHandler(func(id, dir string) error {
//		_, err := gameService.Steer(ctx, id, dir)
//		return err
//	})
//	go hub.Run()
//
//	gameService := service.NewGameService(sessions, configs, service.WithPublisher(hub))
//
// Publish never blocks. It is called while a session lock is held, so the
// hub must never call back into the service from its own goroutine.
package websocket
