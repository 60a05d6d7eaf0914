package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	headerHeight   = 80 // Taller header for multi-session stats
	footerHeight   = 30
	screenWidth    = 800
	screenHeight   = 720
	defaultBaseURL = "http://localhost:8080"
	pollInterval   = 500 * time.Millisecond

	// Held steering keys repeat after repeatDelay ticks, every repeatEvery
	repeatDelay = 12
	repeatEvery = 3
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// Session marker colors in the header
var sessionColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// SessionData holds data for a single attached session
type SessionData struct {
	sessionID  string
	configName string
	params     *Params
	state      *RunState
	fx         Effects
	wsConn     *websocket.Conn
	lastUpdate time.Time
	lastError  string
}

// Game represents the desktop client
type Game struct {
	api              *apiClient
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to watch
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionInfo
	availableConfigs  []ConfigInfo
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // selected config for new session
}

// NewGame creates a client. Given session IDs skip the welcome screen.
func NewGame(api *apiClient, sessionIDs []string) *Game {
	g := &Game{
		api:              api,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen:    &WelcomeScreen{},
	}

	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g
}

// addSession attaches a session, creating one with the first session's
// preset when sessionID is empty
func (g *Game) addSession(sessionID string) {
	if sessionID == "" {
		configName := ""
		if len(g.sessions) > 0 {
			configName = g.sessions[0].configName
		}
		info, err := g.api.createSession(configName)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
		sessionID = info.ID
		log.Printf("Created new session: %s (config: %s)", info.ID, info.ConfigName)
	}

	session := &SessionData{sessionID: sessionID}
	if err := g.fetchSession(session); err != nil {
		log.Printf("Failed to load session %s: %v", sessionID, err)
		return
	}

	conn, err := g.api.dial(sessionID)
	if err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", sessionID, err)
	} else {
		session.wsConn = conn
		go g.listenWebSocket(session, conn)
	}

	g.stateMutex.Lock()
	g.sessions = append(g.sessions, session)
	g.stateMutex.Unlock()
}

// listenWebSocket applies streamed states until the connection drops
func (g *Game) listenWebSocket(session *SessionData, conn *websocket.Conn) {
	defer func() {
		conn.Close()
		g.stateMutex.Lock()
		session.wsConn = nil
		g.stateMutex.Unlock()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		messages, err := parseFrame(data)
		if err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
		}

		g.stateMutex.Lock()
		for _, msg := range messages {
			applyMessage(session, msg)
		}
		g.stateMutex.Unlock()
	}
}

// applyMessage folds one hub message into the session view
func applyMessage(session *SessionData, msg WSMessage) {
	if msg.Event == "error" {
		session.lastError = fmt.Sprint(msg.Data)
		return
	}
	if msg.State != nil {
		session.state = msg.State
		session.lastError = ""
	}
	if msg.Effects != nil {
		session.fx = *msg.Effects
	}
	session.lastUpdate = time.Now()
}

// fetchSession polls the session over REST
func (g *Game) fetchSession(session *SessionData) error {
	info, err := g.api.getSession(session.sessionID)
	if err != nil {
		return err
	}

	g.stateMutex.Lock()
	session.configName = info.ConfigName
	session.params = info.Params
	session.state = info.State
	session.fx = info.Effects
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()
	return nil
}

// loadWelcomeData fetches available sessions and configs from server
func (g *Game) loadWelcomeData() {
	ws := g.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	sessions, err := g.api.listSessions()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.availableSessions = sessions

	configs, err := g.api.listConfigs()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		return
	}
	ws.availableConfigs = configs
}

// createNewSessionFromWelcome creates a session with the selected preset
func (g *Game) createNewSessionFromWelcome() error {
	info, err := g.api.createSession(g.welcomeScreen.newSessionConfig)
	if err != nil {
		return err
	}

	g.selectedSessions[info.ID] = true
	log.Printf("Created new session: %s (config: %s)", info.ID, info.ConfigName)

	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to game screen with selected sessions
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	for sessionID := range g.selectedSessions {
		if !g.attached(sessionID) {
			g.addSession(sessionID)
		}
	}
	g.currentScreen = ScreenGame
}

func (g *Game) attached(sessionID string) bool {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()
	for _, s := range g.sessions {
		if s.sessionID == sessionID {
			return true
		}
	}
	return false
}

func (g *Game) active() *SessionData {
	if len(g.sessions) == 0 {
		return nil
	}
	return g.sessions[g.activeSession]
}

// steer sends a steering command for the active session, over the
// WebSocket when connected
func (g *Game) steer(direction string) {
	session := g.active()
	if session == nil {
		return
	}

	g.stateMutex.RLock()
	conn := session.wsConn
	g.stateMutex.RUnlock()

	var err error
	if conn != nil {
		err = conn.WriteMessage(websocket.TextMessage, steerCommand(direction))
	} else {
		err = g.api.do("POST", "/api/sessions/"+session.sessionID+"/steer",
			map[string]string{"direction": direction}, nil)
	}
	if err != nil {
		g.stateMutex.Lock()
		session.lastError = err.Error()
		g.stateMutex.Unlock()
	}
}

// startPatrol starts the server-side real-time loop for the active session
func (g *Game) startPatrol() {
	session := g.active()
	if session == nil {
		return
	}
	if err := g.api.startLive(session.sessionID); err != nil {
		g.stateMutex.Lock()
		session.lastError = err.Error()
		g.stateMutex.Unlock()
	}
}

// keyRepeats reports whether a held key fires this tick
func keyRepeats(duration int) bool {
	if duration == 1 {
		return true
	}
	return duration > repeatDelay && (duration-repeatDelay)%repeatEvery == 0
}

func steerKeyFired(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if keyRepeats(inpututil.KeyPressDuration(k)) {
			return true
		}
	}
	return false
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < totalItems-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	// Toggle selection with Space
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && ws.cursorPos < totalItems {
		sessionID := ws.availableSessions[ws.cursorPos].ID
		if g.selectedSessions[sessionID] {
			delete(g.selectedSessions, sessionID)
		} else {
			g.selectedSessions[sessionID] = true
		}
	}

	// Cycle through presets with Tab; past the last one means the default
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableConfigs) > 0 {
		next := 0
		for i, cfg := range ws.availableConfigs {
			if cfg.ConfigID == ws.newSessionConfig {
				next = i + 1
				break
			}
		}
		if next >= len(ws.availableConfigs) {
			ws.newSessionConfig = ""
		} else {
			ws.newSessionConfig = ws.availableConfigs[next].ConfigID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.currentScreen = ScreenWelcome
			g.loadWelcomeData()
		}
		return nil
	}

	// Poll sessions without a WebSocket
	for _, session := range g.sessions {
		g.stateMutex.RLock()
		stale := session.wsConn == nil && time.Since(session.lastUpdate) > pollInterval
		g.stateMutex.RUnlock()
		if stale {
			if err := g.fetchSession(session); err != nil {
				log.Printf("Error fetching state for %s: %v", session.sessionID, err)
			}
		}
	}

	// Session switching with number keys (1-9)
	for k := ebiten.Key1; k <= ebiten.Key9; k++ {
		if inpututil.IsKeyJustPressed(k) {
			idx := int(k - ebiten.Key1)
			if idx < len(g.sessions) {
				g.activeSession = idx
				log.Printf("Switched to session %d: %s", idx+1, g.sessions[idx].sessionID)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(g.sessions) < 9 {
		g.addSession("")
		log.Printf("Added new session (total: %d)", len(g.sessions))
	}

	if steerKeyFired(ebiten.KeyArrowLeft, ebiten.KeyA) {
		g.steer("left")
	}
	if steerKeyFired(ebiten.KeyArrowRight, ebiten.KeyD) {
		g.steer("right")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.startPatrol()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== MUPOL PATROL - SESSION SELECT ===", 250, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, session := range ws.availableSessions {
		ebitenutil.DebugPrintAt(screen, sessionLine(session, i == ws.cursorPos, g.selectedSessions[session.ID]), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Preset: %s", configDisplay), 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "> "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s", marker, cfg.ConfigID, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(g.selectedSessions)), 20, y)
	y += 30

	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	for _, line := range []string{
		"  UP/DOWN  - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle preset for new session",
		"  N        - Create new session with selected preset",
		"  ENTER    - Watch selected sessions",
		"  F5       - Refresh session list",
	} {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
	if len(g.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to game", 20, y)
	}
}

// sessionLine formats one row of the session list
func sessionLine(session SessionInfo, cursor, selected bool) string {
	prefix := "  "
	if cursor {
		prefix = "> "
	}
	checkbox := "[ ]"
	if selected {
		checkbox = "[X]"
	}

	status := ""
	if session.Live {
		status = " LIVE"
	}
	energy, score := 0, 0
	if session.State != nil {
		energy, score = session.State.Energy, session.State.Score
		if session.State.Phase == phaseGameOver {
			status += " GAME OVER"
		}
	}

	return fmt.Sprintf("%s%s %s | %s | Energy:%d Score:%d%s",
		prefix, checkbox, session.ID, session.ConfigName, energy, score, status)
}

// drawGameScreen renders the active session's road and the stats of all
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	screen.Fill(color.RGBA{15, 15, 20, 255})

	session := g.active()
	if session == nil {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	g.drawSessionStats(screen)

	if session.state == nil || session.params == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", 20, headerHeight+10)
		return
	}

	drawRoad(screen, session.state, session.params, session.fx)

	// Side panel for the active session
	view := newFieldView(session.params)
	px := int(view.Left+view.Width) + 20
	py := headerHeight + 10
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score: %d", session.state.Score), px, py)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Speed: %.1f", session.state.Speed), px, py+20)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Energy: %d/%d", session.state.Energy, session.state.MaxEnergy), px, py+40)
	drawEnergyBar(screen, session.state, float64(px), float64(py+60), 150, 10)
	if session.state.Message != "" {
		ebitenutil.DebugPrintAt(screen, session.state.Message, px, py+90)
	}
	if session.lastError != "" {
		ebitenutil.DebugPrintAt(screen, "ERROR: "+session.lastError, px, py+110)
	}

	ebitenutil.DebugPrintAt(screen, "1-9: Switch | N: New | Left/Right (A/D): Steer | ENTER/R: Patrol | ESC: Menu", 10, screenHeight-20)
}

// drawSessionStats draws stats for all sessions in header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	for idx, session := range g.sessions {
		if idx >= 5 {
			break // header fits five rows
		}
		y := 5 + idx*15
		ebitenutil.DrawRect(screen, 5, float64(y), 10, 10, sessionColors[idx%len(sessionColors)])
		ebitenutil.DebugPrintAt(screen, statsLine(session, idx, idx == g.activeSession), 20, y)
	}
}

// statsLine formats a session's header row
func statsLine(session *SessionData, idx int, active bool) string {
	marker := ""
	if active {
		marker = ">>>"
	}
	conn := "POLL"
	if session.wsConn != nil {
		conn = "WS"
	}
	if session.state == nil {
		return fmt.Sprintf("%s [%d] %s [%s] loading", marker, idx+1, session.sessionID, conn)
	}

	line := fmt.Sprintf("%s [%d] %s [%s] EN:%d/%d SP:%.1f SC:%d",
		marker, idx+1, session.sessionID, conn,
		session.state.Energy, session.state.MaxEnergy, session.state.Speed, session.state.Score)
	if session.state.Phase == phaseGameOver {
		line += " GAME OVER"
	}
	return line
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	baseURL := os.Getenv("PATROL_SERVER")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Accept multiple session IDs as arguments
	sessionIDs := os.Args[1:]

	game := NewGame(newAPIClient(baseURL), sessionIDs)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("MUPOL Patrol - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
