package main

import "time"

// The desktop client is its own module, so it mirrors the subset of the
// server's JSON it draws.

// Params holds the field geometry of a session
type Params struct {
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	FieldWidth          float64 `json:"field_width"`
	FieldHeight         float64 `json:"field_height"`
	VehicleWidth        float64 `json:"vehicle_width"`
	VehicleHeight       float64 `json:"vehicle_height"`
	VehicleBottomMargin float64 `json:"vehicle_bottom_margin"`
	CarSaturation       float64 `json:"car_saturation"`
	CarLightness        float64 `json:"car_lightness"`
}

// Vehicle is the patrol car; X is its centre as a percentage of the width
type Vehicle struct {
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SpawnedObject is a car, cone or shield on the road
type SpawnedObject struct {
	ID     uint64  `json:"id"`
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Hue    float64 `json:"hue,omitempty"`
}

// RunState is the state of a run as streamed by the server
type RunState struct {
	Phase     string          `json:"phase"`
	Score     int             `json:"score"`
	Energy    int             `json:"energy"`
	MaxEnergy int             `json:"max_energy"`
	Speed     float64         `json:"speed"`
	Frame     int             `json:"frame"`
	Vehicle   Vehicle         `json:"vehicle"`
	Objects   []SpawnedObject `json:"objects"`
	Message   string          `json:"message"`
}

// Effects are the presentation flags of the latest frame
type Effects struct {
	Hit   bool `json:"hit"`
	Shake bool `json:"shake"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event,omitempty"`
	State     *RunState   `json:"state,omitempty"`
	Effects   *Effects    `json:"effects,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// SessionInfo is a session as returned by the REST API
type SessionInfo struct {
	ID             string    `json:"id"`
	ConfigName     string    `json:"config_name"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Live           bool      `json:"live"`
	State          *RunState `json:"state"`
	Effects        Effects   `json:"effects"`
	Params         *Params   `json:"params"`
}

// ConfigInfo represents a parameter preset
type ConfigInfo struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

const (
	phasePlaying  = "playing"
	phaseGameOver = "game_over"

	kindCar    = "civilian_car"
	kindCone   = "cone"
	kindShield = "energy"
)
