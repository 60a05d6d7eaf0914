package service

import (
	"time"

	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
)

// SessionInfo provides information about a patrol session
type SessionInfo struct {
	ID             string           `json:"id"`
	ConfigName     string           `json:"config_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Live           bool             `json:"live"`
	State          *engine.RunState `json:"state"`
	Effects        effects.State    `json:"effects"`
	Params         *engine.Params   `json:"params"`
}

// SteerResult contains the outcome of a steering command
type SteerResult struct {
	Direction engine.Steer     `json:"direction"`
	Moved     bool             `json:"moved"`
	Queued    bool             `json:"queued,omitempty"` // stored for the next live frame
	State     *engine.RunState `json:"state"`
}

// AdvanceResult contains the outcome of a single frame
type AdvanceResult struct {
	State   *engine.RunState    `json:"state"`
	Report  engine.FrameReport  `json:"report"`
	Effects effects.State       `json:"effects"`
	Events  []engine.FrameEvent `json:"events,omitempty"`
}

// BulkAdvanceResult summarizes a sequence of frames
type BulkAdvanceResult struct {
	RequestedFrames int  `json:"requested_frames"`
	FramesExecuted  int  `json:"frames_executed"`
	Restarted       bool `json:"restarted,omitempty"`

	StoppedReason  string `json:"stopped_reason,omitempty"`
	StopReasonCode string `json:"stop_reason_code,omitempty"` // game_over|not_playing
	StoppedOnFrame int    `json:"stopped_on_frame,omitempty"` // 1-based index into the request

	// Start/end snapshot
	StartFrame  int     `json:"start_frame"`
	EndFrame    int     `json:"end_frame"`
	StartEnergy int     `json:"start_energy"`
	EndEnergy   int     `json:"end_energy"`
	ScoreDelta  int     `json:"score_delta"`
	StartSpeed  float64 `json:"start_speed"`
	EndSpeed    float64 `json:"end_speed"`

	// Totals over the executed frames
	Hits     int `json:"hits"`
	Pickups  int `json:"pickups"`
	Spawned  int `json:"spawned"`
	Culled   int `json:"culled"`
	SpeedUps int `json:"speed_ups"`

	GameOver   bool                `json:"game_over"`
	Message    string              `json:"message,omitempty"`
	EnergyRisk string              `json:"energy_risk,omitempty"`
	Threat     *engine.Threat      `json:"nearest_threat,omitempty"`
	Effects    effects.State       `json:"effects"`
	Events     []engine.FrameEvent `json:"events"`
	State      *engine.RunState    `json:"state"`
}

// LiveStatus reports the real-time loop state of a session
type LiveStatus struct {
	SessionID  string           `json:"session_id"`
	Live       bool             `json:"live"`
	IntervalMs float64          `json:"interval_ms"`
	State      *engine.RunState `json:"state"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []engine.FrameEvent `json:"events"`
	TotalEvents int                 `json:"total_events"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a parameter preset
type ConfigInfo struct {
	Filename          string  `json:"filename"`
	ConfigID          string  `json:"config_id"` // The identifier to use for session creation
	Name              string  `json:"name"`      // Display name
	Description       string  `json:"description"`
	InitialEnergy     int     `json:"initial_energy"`
	InitialSpeed      float64 `json:"initial_speed"`
	MaxSpeed          float64 `json:"max_speed"`
	ObstacleSpawnRate int     `json:"obstacle_spawn_rate"`
	EnergySpawnRate   int     `json:"energy_spawn_rate"`
}
