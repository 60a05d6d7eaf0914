package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/service"
)

const (
	laneCols = 20
	laneRows = 14
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"MUPOL Patrol",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`MUPOL Patrol - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Drive the patrol car (V) along the road, dodge civilian cars (C) and cones (^),
and collect energy shields (+). Energy drains every second and each hit costs
energy. The patrol ends when energy reaches zero. Score grows every second.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: session management
- start_session: start or restart the patrol
- game_state: current state with a text lane view
- steer: move the car one step left or right
- advance: run one frame
- bulk_advance: run up to 600 frames in one call
- event_history: hits, pickups and speed changes so far
- list_configs: available parameter presets
- game_instructions: full rules

NOTE: The 'intent' parameter on steer/advance tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intentProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of the intent behind this action (serves as a rubber duck to help explain your reasoning)",
	}
}

func steerProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"left", "right", "none"},
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new patrol session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, see list_configs (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all patrol sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Run operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_session",
		Description: "Start the patrol, or restart it from scratch",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current run state with a text view of the road",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "steer",
		Description: "Move the patrol car one step sideways without advancing time",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"direction":  steerProp("Direction to steer"),
				"intent":     intentProp(),
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleSteer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Advance the simulation by one frame, optionally steering first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"input":      steerProp("Steering applied before the frame (optional)"),
				"delta_ms": map[string]interface{}{
					"type":        "number",
					"description": "Elapsed milliseconds for the frame (optional, defaults to 1/60 s)",
				},
				"intent": intentProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_advance",
		Description: "Advance many frames at once (max 600). Give either one input per frame in 'inputs', or a frame count with a single 'input'. Stops early at game over.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"inputs": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"left", "right", "none"},
					},
					"description": "Steering per frame",
				},
				"frames": map[string]interface{}{
					"type":        "integer",
					"description": "Number of frames when 'inputs' is not given",
				},
				"input": steerProp("Steering repeated on every frame when using 'frames'"),
				"delta_ms": map[string]interface{}{
					"type":        "number",
					"description": "Milliseconds per frame (optional, defaults to 1/60 s)",
				},
				"restart": map[string]interface{}{
					"type":        "boolean",
					"description": "Restart the patrol before advancing",
				},
				"intent": intentProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBulkAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get the event log of a session (start, hit, pickup, speed_up, game_over)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available parameter presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nCall start_session to begin the patrol.\n", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase, score := "", 0
		if s.State != nil {
			phase, score = string(s.State.Phase), s.State.Score
		}
		live := ""
		if s.Live {
			live = ", live"
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Phase: %s, Score: %d%s, Created: %s)\n",
			s.ID, s.ConfigName, phase, score, live, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string           `json:"message"`
		State   *engine.RunState `json:"state"`
	}
	if err := c.apiCall("POST", sessionPath(sessionID, "/start"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunState(response.State, nil)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	// The session carries the params needed to draw the lane view
	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunState(session.State, session.Params)), nil
}

func (c *Client) handleSteer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	var result service.SteerResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/steer"), map[string]string{"direction": direction}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSteerResult(&result)), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	body := map[string]interface{}{}
	if input, ok := args["input"].(string); ok && input != "" {
		body["input"] = input
	}
	if delta, ok := args["delta_ms"].(float64); ok {
		body["delta_ms"] = delta
	}

	var result service.AdvanceResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/advance"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAdvanceResult(&result)), nil
}

func (c *Client) handleBulkAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	restart, _ := args["restart"].(bool)

	frames, err := framesFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"frames":  frames,
		"restart": restart,
	}

	var result service.BulkAdvanceResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/bulk-advance"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkAdvanceResult(sessionID, &result)), nil
}

// framesFromArgs builds the frame list from either 'inputs' or 'frames'
func framesFromArgs(args map[string]interface{}) ([]engine.FrameInput, error) {
	delta := engine.DefaultParams().NominalFrameMs
	if d, ok := args["delta_ms"].(float64); ok {
		delta = d
	}

	if raw, ok := args["inputs"].([]interface{}); ok && len(raw) > 0 {
		frames := make([]engine.FrameInput, 0, len(raw))
		for _, v := range raw {
			input, _ := v.(string)
			frames = append(frames, engine.FrameInput{DeltaMs: delta, Input: engine.Steer(input)})
		}
		return frames, nil
	}

	count, ok := args["frames"].(float64)
	if !ok || count < 1 {
		return nil, fmt.Errorf("provide 'inputs' or a positive 'frames' count")
	}
	input, _ := args["input"].(string)

	frames := make([]engine.FrameInput, int(count))
	for i := range frames {
		frames[i] = engine.FrameInput{DeltaMs: delta, Input: engine.Steer(input)}
	}
	return frames, nil
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	if page, ok := args["page"].(float64); ok {
		query.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		query.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Energy: %d, Speed: %g→%g, Obstacle every %d frames, Shield every %d frames\n\n",
			config.ConfigID, config.Name, config.Description, config.InitialEnergy,
			config.InitialSpeed, config.MaxSpeed, config.ObstacleSpawnRate, config.EnergySpawnRate)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚓 MUPOL Patrol - Complete Instructions

GAME OBJECTIVE:
Keep the patrol going as long as possible. Every second you survive adds
the current speed (rounded down) to your score.

THE ROAD:
• The field is 400 x 700 pixels; horizontal positions are percentages (0-100)
• Your car sits near the bottom of the road and only moves sideways
• Traffic and shields scroll down from the top at the current speed

LANE VIEW LEGEND:
• V - Your patrol car
• C - Civilian car (obstacle, costs energy on contact)
• ^ - Traffic cone (smaller obstacle, same cost)
• + - Energy shield (restores energy)
• . - Empty road

ENERGY:
• Starts at 100 (classic preset) and never exceeds the starting value
• Drains 2 points every second of play
• Each hit costs 30, each shield restores 15
• The patrol ends when energy reaches 0

SPEED:
• Starts at 4 px per frame and rises by 0.5 every 300 frames, up to 12
• A new obstacle appears every 70 frames, a shield every 150 frames

STEERING:
• Each steer moves the car 3% left or right, clamped to the road edges
• 'steer' moves without advancing time; 'advance' steers then runs one frame

🎮 API USAGE BEST PRACTICES:
- Use bulk_advance for efficiency: 60 frames is one second of play
- Watch 'Nearest threat' and the frames-to-impact estimate in results
- Steer early: at speed 4 an obstacle needs about 150 frames to reach you
- Check event_history to review hits and pickups

SESSION MANAGEMENT:
- Multiple sessions can run simultaneously
- Each session has a unique 4-character ID
- Presets (list_configs) change speed, spawn rates and energy rules

Good luck on your patrol! 🚓`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	live := ""
	if session.Live {
		live = " (live)"
	}
	return fmt.Sprintf("Session: %s%s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, live, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatRunState(session.State, session.Params))
}

// formatRunState renders the header, lane view and status of a run. A nil
// params falls back to the classic field size for the view.
func formatRunState(state *engine.RunState, params *engine.Params) string {
	if state == nil {
		return "No run state available"
	}
	if params == nil {
		params = engine.DefaultParams()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s | Frame: %d | Energy: %d/%d | Score: %d | Speed: %g | X: %.1f%%\n",
		state.Phase, state.Frame, state.Energy, state.MaxEnergy, state.Score, state.Speed, state.Vehicle.X)

	if state.EnergyRisk != "" {
		fmt.Fprintf(&b, "Energy risk: %s\n", state.EnergyRisk)
	}
	if threat, ok := engine.NearestThreat(state, params); ok {
		fmt.Fprintf(&b, "Nearest threat: %s at X %.1f%%, %.0fpx ahead (~%d frames)\n",
			threat.Object.Kind, threat.Object.X, threat.Gap, engine.FramesUntil(threat.Gap, state.Speed))
	}
	fmt.Fprintf(&b, "Objects: %d cars, %d cones, %d shields\n\n",
		engine.CountKind(state.Objects, engine.CivilianCar),
		engine.CountKind(state.Objects, engine.Cone),
		engine.CountKind(state.Objects, engine.EnergyPickup))

	for _, line := range engine.LaneView(state, params, laneCols, laneRows) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if state.Phase == engine.PhaseGameOver {
		b.WriteString("\n💀 GAME OVER")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatEvents(events []engine.FrameEvent) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Events:\n")
	for _, event := range events {
		b.WriteString(formatEventLine(event))
	}
	return b.String()
}

func formatEventLine(event engine.FrameEvent) string {
	detail := ""
	if event.Kind != "" {
		detail = fmt.Sprintf(" %s #%d", event.Kind, event.ObjectID)
	}
	return fmt.Sprintf("- frame %d: %s%s (energy %d, score %d, speed %g)\n",
		event.Frame, event.Type, detail, event.Energy, event.Score, event.Speed)
}

func formatSteerResult(result *service.SteerResult) string {
	var response string
	switch {
	case result.Queued:
		response = fmt.Sprintf("⏳ Steer %s queued for the next live frame\n", result.Direction)
	case result.Moved:
		response = fmt.Sprintf("✓ Steered %s\n", result.Direction)
	default:
		response = fmt.Sprintf("✗ Steer %s had no effect (edge of the road or not playing)\n", result.Direction)
	}
	return response + "\n" + formatRunState(result.State, nil)
}

func formatAdvanceResult(result *service.AdvanceResult) string {
	var b strings.Builder
	report := result.Report
	if report.Advanced {
		fmt.Fprintf(&b, "✓ Frame %d: energy %+d, score %+d", report.Frame, report.EnergyDelta, report.ScoreDelta)
		if report.Hit {
			b.WriteString(", HIT")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("✗ Not playing, nothing advanced (use start_session)\n")
	}

	if events := formatEvents(result.Events); events != "" {
		b.WriteString(events)
	}

	b.WriteString("\n")
	b.WriteString(formatRunState(result.State, nil))
	return b.String()
}

func formatBulkAdvanceResult(sessionID string, result *service.BulkAdvanceResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	if result.Restarted {
		b.WriteString("Restarted before advancing\n")
	}
	fmt.Fprintf(&b, "Executed %d/%d frames (frame %d→%d)\n",
		result.FramesExecuted, result.RequestedFrames, result.StartFrame, result.EndFrame)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StoppedReason)
		if result.StoppedOnFrame > 0 {
			fmt.Fprintf(&b, " (request frame %d)", result.StoppedOnFrame)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Energy: %d→%d | Score: %+d | Speed: %g→%g\n",
		result.StartEnergy, result.EndEnergy, result.ScoreDelta, result.StartSpeed, result.EndSpeed)
	fmt.Fprintf(&b, "Hits: %d | Shields: %d | Spawned: %d | Culled: %d | Speed ups: %d\n",
		result.Hits, result.Pickups, result.Spawned, result.Culled, result.SpeedUps)

	if events := formatEvents(result.Events); events != "" {
		b.WriteString("\n")
		b.WriteString(events)
	}

	b.WriteString("\n")
	b.WriteString(formatRunState(result.State, nil))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (Page %d/%d, Total: %d events):\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for _, event := range history.Events {
		b.WriteString(formatEventLine(event))
	}

	if history.HasNext {
		b.WriteString("\n(More events available on next page)")
	}

	return b.String()
}
