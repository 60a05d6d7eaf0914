// Package api provides HTTP REST API handlers for MUPOL Patrol.
//
// The api package implements:
//   - Session management endpoints
//   - Frame stepping (single, bulk) and steering
//   - Real-time live loop control
//   - Parameter preset listing, lookup and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "rush"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=n)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete a session and its snapshot
//
// Run Operations:
//   - POST /api/sessions/{id}/start - Start or restart the run
//   - POST /api/sessions/{id}/steer - {"direction": "left|right|none"}
//   - POST /api/sessions/{id}/advance - {"delta_ms": 16.67, "input": "left"}
//   - POST /api/sessions/{id}/bulk-advance - {"frames": [...], "restart": false}
//   - GET /api/sessions/{id}/state - Current run state
//   - GET /api/sessions/{id}/history - Event log (?page&limit&order)
//   - POST /api/sessions/{id}/live - Drive the session in real time
//   - DELETE /api/sessions/{id}/live - Stop the live loop
//
// Configuration:
//   - GET /api/configs - List presets
//   - POST /api/configs - Save a preset (fields not sent keep classic values)
//   - GET /api/configs/{name} - Full parameters of a preset
//
// Other:
//   - GET /health
//   - GET /ws?session=<id>[&encoding=msgpack]
//
// An advance request without delta_ms advances one nominal frame.
//
// Error Handling:
//
// Errors are returned as {"error": "message"}. Unknown sessions and presets
// answer 404, invalid input 400, live loop conflicts 409 (manual stepping
// while live, starting twice, stopping an idle session) and anything else
// 500.
package api
