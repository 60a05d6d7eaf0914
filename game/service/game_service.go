package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidSteer       = errors.New("invalid steering direction")
	ErrTooManyFrames      = errors.New("too many frames")
	ErrLiveAlreadyRunning = errors.New("live loop already running")
	ErrLiveNotRunning     = errors.New("live loop not running")
)

// GameService defines all patrol-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Run Operations
	StartSession(ctx context.Context, sessionID string) (*engine.RunState, error)
	Steer(ctx context.Context, sessionID, direction string) (*SteerResult, error)
	Advance(ctx context.Context, sessionID string, deltaMs float64, input string) (*AdvanceResult, error)
	BulkAdvance(ctx context.Context, sessionID string, frames []engine.FrameInput, restart bool) (*BulkAdvanceResult, error)

	// Real-time driving
	StartLive(ctx context.Context, sessionID string) (*LiveStatus, error)
	StopLive(ctx context.Context, sessionID string) (*LiveStatus, error)

	// Run State
	GetState(ctx context.Context, sessionID string) (*engine.RunState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Params, error)
	SaveConfig(ctx context.Context, configName string, params *engine.Params) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, params *engine.Params) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles parameter preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Params, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Params
	SaveConfig(name string, params *engine.Params) error
}

// Publisher receives every frame produced for a session
type Publisher interface {
	Publish(sessionID string, state *engine.RunState, fx effects.State, events []engine.FrameEvent)
}

// Session represents an active patrol session. Engine, Effects and History
// are only touched while the session is locked.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Params         *engine.Params
	Effects        *effects.Effects
	History        []engine.FrameEvent
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu       sync.Mutex
	pending  engine.Steer
	liveStop context.CancelFunc
	liveDone chan struct{}
}

// Lock serializes access to the session's engine
func (s *Session) Lock() {
	s.mu.Lock()
}

// Unlock releases the session
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// Live reports whether a real-time loop is driving the session.
// Callers hold the lock.
func (s *Session) Live() bool {
	return s.liveStop != nil
}
