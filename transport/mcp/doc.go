// Package mcp provides a Model Context Protocol front end for MUPOL Patrol.
//
// The Client is a thin proxy: every tool call is turned into a request
// against the REST API and the JSON answer is rendered as text for the
// agent, including a lane view of the road (V vehicle, C car, ^ cone,
// + energy shield).
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - start_session: start or restart the run
//   - game_state: run state with lane view
//   - steer: move one step left or right without advancing time
//   - advance: steer then run one frame
//   - bulk_advance: run up to 600 frames, from an input list or a count
//   - event_history: paginated hit, pickup and speed events
//   - list_configs: available parameter presets
//   - game_instructions: rules and usage hints
//
// Transport Modes:
//
// The same MCP server is served over stdio (stdio-mcp mode of the main
// binary) or over HTTP at /mcp.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
