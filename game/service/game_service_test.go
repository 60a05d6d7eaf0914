package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, params *engine.Params) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(params, engine.WithSeed(uint64(len(m.sessions)+1)))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Params:         params,
		Effects:        effects.New(params),
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

func (m *MockSessionManager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	// Mock save - in real implementation this would persist to disk
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.Params
}

func NewMockConfigManager() *MockConfigManager {
	rush := engine.DefaultParams()
	rush.Name = "rush"
	rush.InitialSpeed = 8

	return &MockConfigManager{
		configs: map[string]*engine.Params{
			"classic": engine.DefaultParams(),
			"rush":    rush,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.Params, error) {
	params, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return params, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, params := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        params.Name,
			Description: params.Description,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.Params {
	return m.configs["classic"]
}

func (m *MockConfigManager) SaveConfig(name string, params *engine.Params) error {
	if err := engine.ValidateParams(params); err != nil {
		return err
	}
	m.configs[name] = params
	return nil
}

// recordingPublisher captures published frames
type recordingPublisher struct {
	mu     sync.Mutex
	frames []*engine.RunState
	events []engine.FrameEvent
}

func (p *recordingPublisher) Publish(sessionID string, state *engine.RunState, fx effects.State, events []engine.FrameEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, state)
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

func newTestService(opts ...service.Option) (service.GameService, *MockSessionManager) {
	sessions := NewMockSessionManager()
	return service.NewGameService(sessions, NewMockConfigManager(), opts...), sessions
}

func createStartedSession(t *testing.T, svc service.GameService) string {
	t.Helper()
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svc.StartSession(ctx, info.ID); err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}
	return info.ID
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	tests := []struct {
		name       string
		configName string
		wantConfig string
		wantSpeed  float64
		wantErr    bool
	}{
		{"create with default config", "", "classic", 4, false},
		{"create with named config", "rush", "rush", 8, false},
		{"create with unknown config", "nonexistent", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("Expected config %s, got %s", tt.wantConfig, info.ConfigName)
			}
			if info.State.Phase != engine.PhaseStart {
				t.Errorf("Expected new session in start phase, got %s", info.State.Phase)
			}
			if info.State.Speed != tt.wantSpeed {
				t.Errorf("Expected speed %v, got %v", tt.wantSpeed, info.State.Speed)
			}
		})
	}
}

func TestGameService_GetSessionNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetSession(context.Background(), "nope")
	if !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	a, _ := svc.CreateSession(ctx, "")
	svc.CreateSession(ctx, "rush")

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, a.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if err := svc.DeleteSession(ctx, a.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestGameService_StartSession(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _ := newTestService(service.WithPublisher(pub))
	id := createStartedSession(t, svc)

	svc.Advance(ctx, id, 1000, "left")
	state, err := svc.StartSession(ctx, id)
	if err != nil {
		t.Fatalf("Failed to restart: %v", err)
	}

	if state.Phase != engine.PhasePlaying || state.Frame != 0 || state.Energy != 100 || state.Vehicle.X != 50 {
		t.Errorf("Expected a fresh run, got %+v", state)
	}

	history, _ := svc.GetHistory(ctx, id, service.HistoryOptions{Order: "asc"})
	starts := 0
	for _, e := range history.Events {
		if e.Type == "start" {
			starts++
		}
	}
	if starts != 2 {
		t.Errorf("Expected 2 start events, got %d", starts)
	}
	if pub.count() == 0 {
		t.Error("Expected frames to be published")
	}
}

func TestGameService_Steer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	info, _ := svc.CreateSession(ctx, "")

	// Ignored before the run starts
	result, err := svc.Steer(ctx, info.ID, "left")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Moved || result.State.Vehicle.X != 50 {
		t.Errorf("Expected steering to be ignored before start, got %+v", result)
	}

	svc.StartSession(ctx, info.ID)
	result, err = svc.Steer(ctx, info.ID, "left")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Moved || result.State.Vehicle.X != 47 {
		t.Errorf("Expected vehicle at 47, got %v", result.State.Vehicle.X)
	}

	if _, err := svc.Steer(ctx, info.ID, "up"); !errors.Is(err, service.ErrInvalidSteer) {
		t.Errorf("Expected ErrInvalidSteer, got %v", err)
	}
	if _, err := svc.Steer(ctx, "nope", "left"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Advance(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newTestService()
	id := createStartedSession(t, svc)
	savesBefore := sessions.saves

	result, err := svc.Advance(ctx, id, 1000, "right")
	if err != nil {
		t.Fatalf("Failed to advance: %v", err)
	}

	if result.State.Frame != 1 {
		t.Errorf("Expected frame 1, got %d", result.State.Frame)
	}
	if result.State.Energy != 98 || result.State.Score != 4 {
		t.Errorf("Expected energy 98 and score 4, got %d and %d", result.State.Energy, result.State.Score)
	}
	if result.State.Vehicle.X != 53 {
		t.Errorf("Expected input to steer right to 53, got %v", result.State.Vehicle.X)
	}
	if !result.Report.Advanced || result.Report.DrainTicks != 1 {
		t.Errorf("Expected an advanced frame with one drain tick, got %+v", result.Report)
	}
	if sessions.saves <= savesBefore {
		t.Error("Expected session to be persisted after advance")
	}

	if _, err := svc.Advance(ctx, id, 16, "jump"); !errors.Is(err, service.ErrInvalidSteer) {
		t.Errorf("Expected ErrInvalidSteer, got %v", err)
	}
}

func TestGameService_BulkAdvance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	t.Run("too many frames", func(t *testing.T) {
		id := createStartedSession(t, svc)
		frames := make([]engine.FrameInput, engine.MaxBulkFrames+1)
		if _, err := svc.BulkAdvance(ctx, id, frames, false); !errors.Is(err, service.ErrTooManyFrames) {
			t.Errorf("Expected ErrTooManyFrames, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		id := createStartedSession(t, svc)
		frames := []engine.FrameInput{{DeltaMs: 16}, {DeltaMs: 16, Input: "up"}}
		if _, err := svc.BulkAdvance(ctx, id, frames, false); !errors.Is(err, service.ErrInvalidSteer) {
			t.Errorf("Expected ErrInvalidSteer, got %v", err)
		}
	})

	t.Run("not started", func(t *testing.T) {
		info, _ := svc.CreateSession(ctx, "")
		result, err := svc.BulkAdvance(ctx, info.ID, []engine.FrameInput{{DeltaMs: 16}}, false)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.FramesExecuted != 0 || result.StopReasonCode != "not_playing" {
			t.Errorf("Expected no frames and not_playing, got %d and %s", result.FramesExecuted, result.StopReasonCode)
		}
	})

	t.Run("restart", func(t *testing.T) {
		info, _ := svc.CreateSession(ctx, "")
		frames := make([]engine.FrameInput, 10)
		for i := range frames {
			frames[i] = engine.FrameInput{DeltaMs: 16, Input: engine.SteerLeft}
		}
		result, err := svc.BulkAdvance(ctx, info.ID, frames, true)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.Restarted || result.FramesExecuted != 10 || result.EndFrame != 10 {
			t.Errorf("Expected 10 frames after restart, got %+v", result)
		}
		if result.State.Vehicle.X != 20 {
			t.Errorf("Expected vehicle at 20 after 10 left steps, got %v", result.State.Vehicle.X)
		}
		if result.Events[0].Type != "start" {
			t.Errorf("Expected start event first, got %s", result.Events[0].Type)
		}
	})

	t.Run("stops at game over", func(t *testing.T) {
		id := createStartedSession(t, svc)
		// One drain tick per frame: 100 energy lasts 50 frames, before the
		// first obstacle spawns on frame 70
		frames := make([]engine.FrameInput, 60)
		for i := range frames {
			frames[i] = engine.FrameInput{DeltaMs: 1000}
		}

		result, err := svc.BulkAdvance(ctx, id, frames, false)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.FramesExecuted != 50 || result.StoppedOnFrame != 50 {
			t.Errorf("Expected stop on frame 50, got executed=%d stopped_on=%d", result.FramesExecuted, result.StoppedOnFrame)
		}
		if !result.GameOver || result.StopReasonCode != "game_over" {
			t.Errorf("Expected game_over, got %s", result.StopReasonCode)
		}
		if result.EndEnergy != 0 || result.ScoreDelta != 200 {
			t.Errorf("Expected energy 0 and score +200, got %d and %d", result.EndEnergy, result.ScoreDelta)
		}
		last := result.Events[len(result.Events)-1]
		if last.Type != "game_over" {
			t.Errorf("Expected last event game_over, got %s", last.Type)
		}

		// A finished run does not advance further
		again, _ := svc.BulkAdvance(ctx, id, frames[:5], false)
		if again.FramesExecuted != 0 || again.StopReasonCode != "game_over" {
			t.Errorf("Expected finished run to stay inert, got %+v", again)
		}

		history, err := svc.GetHistory(ctx, id, service.HistoryOptions{Limit: 1})
		if err != nil {
			t.Fatalf("Failed to get history: %v", err)
		}
		if history.TotalEvents != 2 || history.TotalPages != 2 || !history.HasNext {
			t.Errorf("Expected 2 events over 2 pages, got %+v", history)
		}
		if history.Events[0].Type != "game_over" {
			t.Errorf("Expected newest event first, got %s", history.Events[0].Type)
		}
	})
}

func TestGameService_Live(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _ := newTestService(service.WithPublisher(pub), service.WithLiveInterval(time.Millisecond))

	info, _ := svc.CreateSession(ctx, "")

	status, err := svc.StartLive(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to start live loop: %v", err)
	}
	if !status.Live || status.State.Phase != engine.PhasePlaying {
		t.Errorf("Expected live playing session, got %+v", status)
	}

	if _, err := svc.StartLive(ctx, info.ID); !errors.Is(err, service.ErrLiveAlreadyRunning) {
		t.Errorf("Expected ErrLiveAlreadyRunning, got %v", err)
	}
	if _, err := svc.Advance(ctx, info.ID, 16, ""); !errors.Is(err, service.ErrLiveAlreadyRunning) {
		t.Errorf("Expected manual advance to be rejected, got %v", err)
	}

	steer, err := svc.Steer(ctx, info.ID, "left")
	if err != nil {
		t.Fatalf("Failed to steer: %v", err)
	}
	if !steer.Queued {
		t.Error("Expected steering to be queued while live")
	}

	deadline := time.Now().Add(2 * time.Second)
	for pub.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if pub.count() < 5 {
		t.Fatalf("Expected live frames to be published, got %d", pub.count())
	}

	status, err = svc.StopLive(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to stop live loop: %v", err)
	}
	if status.Live {
		t.Error("Expected live loop to be stopped")
	}
	if status.State.Frame == 0 {
		t.Error("Expected the live loop to have advanced the run")
	}
	if status.State.Vehicle.X != 47 {
		t.Errorf("Expected queued steer to be consumed once, vehicle at %v", status.State.Vehicle.X)
	}

	if _, err := svc.StopLive(ctx, info.ID); !errors.Is(err, service.ErrLiveNotRunning) {
		t.Errorf("Expected ErrLiveNotRunning, got %v", err)
	}
}

func TestGameService_DeleteStopsLive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(service.WithLiveInterval(time.Millisecond))
	info, _ := svc.CreateSession(ctx, "")

	if _, err := svc.StartLive(ctx, info.ID); err != nil {
		t.Fatalf("Failed to start live loop: %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := svc.GetState(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	configs, err := svc.ListConfigs(ctx)
	if err != nil || len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d (%v)", len(configs), err)
	}

	params := engine.DefaultParams()
	params.Name = "night"
	if err := svc.SaveConfig(ctx, "night", params); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	loaded, err := svc.LoadConfig(ctx, "night")
	if err != nil || loaded.Name != "night" {
		t.Errorf("Expected to load night config, got %v (%v)", loaded, err)
	}

	bad := engine.DefaultParams()
	bad.MoveStep = 0
	if err := svc.SaveConfig(ctx, "bad", bad); err == nil {
		t.Error("Expected error saving invalid params")
	}
}
