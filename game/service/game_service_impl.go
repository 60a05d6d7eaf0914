package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mupol-patrol/game/engine"
	"github.com/wricardo/mupol-patrol/game/runner"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions     SessionManager
	configs      ConfigManager
	publisher    Publisher
	liveInterval time.Duration
	mu           sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithPublisher streams every frame to p
func WithPublisher(p Publisher) Option {
	return func(s *gameServiceImpl) {
		s.publisher = p
	}
}

// WithLiveInterval sets the tick interval of live loops
func WithLiveInterval(d time.Duration) Option {
	return func(s *gameServiceImpl) {
		s.liveInterval = d
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:     sessions,
		configs:      configs,
		liveInterval: runner.DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given preset name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "classic"
	}
	return configName
}

// getSession looks up a session and wraps lookup failures
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return sess, nil
}

// sessionInfo builds the public view of a locked session
func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Params.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Live:           sess.Live(),
		State:          sess.Engine.GetState(),
		Effects:        sess.Effects.State(),
		Params:         sess.Params,
	}
}

// CreateSession creates a new patrol session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var params *engine.Params
	var err error
	if configName != "" {
		params, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		params = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", params)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.Lock()
	defer sess.Unlock()

	info := s.sessionInfo(sess)
	if configName != "" {
		info.ConfigName = configName
	}
	log.Printf("[SESSION] created session=%s config=%s seed=%d", sess.ID, info.ConfigName, info.State.Seed)
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, s.sessionInfo(sess))
		sess.Unlock()
	}

	return result, nil
}

// DeleteSession stops any live loop and removes the session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		sess.Lock()
		stop := sess.liveStop
		sess.liveStop, sess.liveDone = nil, nil
		sess.Unlock()
		if stop != nil {
			stop()
		}
	}

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	log.Printf("[SESSION] deleted session=%s", sessionID)
	return nil
}

// StartSession starts or restarts the run of a session
func (s *gameServiceImpl) StartSession(ctx context.Context, sessionID string) (*engine.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	s.sessions.UpdateLastAccessed(sessionID)
	state := s.startRun(sess)
	s.persist(sess)
	return state, nil
}

// startRun resets the engine and the presentation timers of a locked
// session and records the start event
func (s *gameServiceImpl) startRun(sess *Session) *engine.RunState {
	state := sess.Engine.StartSession()
	sess.Effects.Reset()
	sess.pending = engine.SteerNone

	event := engine.FrameEvent{
		Type:      "start",
		Frame:     state.Frame,
		Energy:    state.Energy,
		Score:     state.Score,
		Speed:     state.Speed,
		Timestamp: time.Now().Unix(),
	}
	sess.History = append(sess.History, event)
	s.publish(sess, state, []engine.FrameEvent{event})

	log.Printf("[START] session=%s energy=%d speed=%.1f", sess.ID, state.Energy, state.Speed)
	return state
}

// Steer applies one steering step. While a live loop runs the direction is
// queued and consumed at the start of the next frame.
func (s *gameServiceImpl) Steer(ctx context.Context, sessionID, direction string) (*SteerResult, error) {
	dir, err := engine.ParseSteer(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSteer, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	s.sessions.UpdateLastAccessed(sessionID)

	if sess.Live() {
		sess.pending = dir
		return &SteerResult{
			Direction: dir,
			Queued:    true,
			State:     sess.Engine.GetState(),
		}, nil
	}

	moved := sess.Engine.ApplySteer(dir)
	state := sess.Engine.GetState()
	if moved {
		s.publish(sess, state, nil)
		s.persist(sess)
	}

	log.Printf("[STEER] session=%s dir=%s moved=%v x=%.2f", sessionID, dir, moved, state.Vehicle.X)
	return &SteerResult{
		Direction: dir,
		Moved:     moved,
		State:     state,
	}, nil
}

// Advance runs a single frame
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, deltaMs float64, input string) (*AdvanceResult, error) {
	dir, err := engine.ParseSteer(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSteer, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Live() {
		return nil, fmt.Errorf("session %s is driven in real time: %w", sessionID, ErrLiveAlreadyRunning)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	state, report, events := s.step(sess, deltaMs, dir)
	if report.Advanced {
		s.persist(sess)
	}

	log.Printf("[ADVANCE] session=%s frame=%d energy=%d score=%d speed=%.1f objects=%d",
		sessionID, state.Frame, state.Energy, state.Score, state.Speed, len(state.Objects))
	return &AdvanceResult{
		State:   state,
		Report:  report,
		Effects: sess.Effects.State(),
		Events:  events,
	}, nil
}

// step runs one frame of a locked session and feeds the effects, history
// and publisher
func (s *gameServiceImpl) step(sess *Session, deltaMs float64, input engine.Steer) (*engine.RunState, engine.FrameReport, []engine.FrameEvent) {
	state, report := sess.Engine.Advance(deltaMs, input)
	if !report.Advanced {
		return state, report, nil
	}

	sess.Effects.Tick(deltaMs)
	sess.Effects.Observe(report)

	events := engine.EventsFromReport(report, state)
	sess.History = append(sess.History, events...)
	s.publish(sess, state, events)

	if report.GameOver {
		log.Printf("[GAME_OVER] session=%s frame=%d score=%d", sess.ID, state.Frame, state.Score)
	}
	return state, report, events
}

// BulkAdvance runs a sequence of frames, stopping at the end of the run
func (s *gameServiceImpl) BulkAdvance(ctx context.Context, sessionID string, frames []engine.FrameInput, restart bool) (*BulkAdvanceResult, error) {
	if len(frames) > engine.MaxBulkFrames {
		return nil, fmt.Errorf("%w: %d requested, limit is %d", ErrTooManyFrames, len(frames), engine.MaxBulkFrames)
	}

	inputs := make([]engine.FrameInput, len(frames))
	for i, f := range frames {
		dir, err := engine.ParseSteer(string(f.Input))
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %v", ErrInvalidSteer, i+1, err)
		}
		inputs[i] = engine.FrameInput{DeltaMs: f.DeltaMs, Input: dir}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Live() {
		return nil, fmt.Errorf("session %s is driven in real time: %w", sessionID, ErrLiveAlreadyRunning)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkAdvanceResult{
		RequestedFrames: len(inputs),
		Events:          make([]engine.FrameEvent, 0),
	}

	if restart {
		s.startRun(sess)
		result.Restarted = true
		result.Events = append(result.Events, sess.History[len(sess.History)-1])
	}

	start := sess.Engine.GetState()
	result.StartFrame = start.Frame
	result.StartEnergy = start.Energy
	result.StartSpeed = start.Speed

	for i, f := range inputs {
		if sess.Engine.Phase() != engine.PhasePlaying {
			if sess.Engine.IsGameOver() {
				result.StopReasonCode = "game_over"
				result.StoppedReason = "run already over; restart to play again"
			} else {
				result.StopReasonCode = "not_playing"
				result.StoppedReason = "run not started; start or restart the session first"
			}
			result.StoppedOnFrame = i + 1
			break
		}

		_, report, events := s.step(sess, f.DeltaMs, f.Input)
		result.FramesExecuted++
		result.Events = append(result.Events, events...)
		result.Spawned += len(report.Spawned)
		result.Culled += report.Culled
		if report.SpeedChanged {
			result.SpeedUps++
		}
		for _, c := range report.Collisions {
			if c.Kind == engine.EnergyPickup {
				result.Pickups++
			} else {
				result.Hits++
			}
		}

		if report.GameOver {
			result.StopReasonCode = "game_over"
			result.StoppedReason = fmt.Sprintf("out of energy on frame %d", i+1)
			result.StoppedOnFrame = i + 1
			break
		}
	}

	end := sess.Engine.GetState()
	result.State = end
	result.EndFrame = end.Frame
	result.EndEnergy = end.Energy
	result.EndSpeed = end.Speed
	result.ScoreDelta = end.Score - start.Score
	result.GameOver = end.Phase == engine.PhaseGameOver
	result.Message = end.Message
	result.EnergyRisk = end.EnergyRisk
	result.Effects = sess.Effects.State()
	if threat, ok := engine.NearestThreat(end, sess.Params); ok {
		result.Threat = &threat
	}

	s.persist(sess)

	log.Printf("[BULK] session=%s frames=%d/%d stop=%s energy=%d->%d score=+%d",
		sessionID, result.FramesExecuted, result.RequestedFrames, result.StopReasonCode,
		result.StartEnergy, result.EndEnergy, result.ScoreDelta)
	return result, nil
}

// GetState retrieves the current run state
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetHistory returns the paginated event history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	history := make([]engine.FrameEvent, len(sess.History))
	copy(history, sess.History)
	sess.Unlock()

	return paginate(history, opts), nil
}

// paginate slices the history according to opts
func paginate(history []engine.FrameEvent, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	events := []engine.FrameEvent{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				events = append(events, history[i])
			}
		} else {
			events = append(events, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available parameter presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific parameter preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Params, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a parameter preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, params *engine.Params) error {
	return s.configs.SaveConfig(configName, params)
}

// publish forwards a frame to the publisher, if any
func (s *gameServiceImpl) publish(sess *Session, state *engine.RunState, events []engine.FrameEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(sess.ID, state, sess.Effects.State(), events)
}

// persist saves a locked session, logging failures
func (s *gameServiceImpl) persist(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Printf("Warning: Failed to persist session %s: %v", sess.ID, err)
	}
}
