package engine

import "time"

// ObjectKind identifies the variant of a spawned object
type ObjectKind string

const (
	CivilianCar  ObjectKind = "civilian_car"
	Cone         ObjectKind = "cone"
	EnergyPickup ObjectKind = "energy"
)

// Phase is the session lifecycle state
type Phase string

const (
	PhaseStart    Phase = "start"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Steer is a discrete steering intent
type Steer string

const (
	SteerNone  Steer = "none"
	SteerLeft  Steer = "left"
	SteerRight Steer = "right"
)

const (
	// Centre of the lane, in percent of field width
	VehicleStartX = 50.0

	// Real milliseconds per drain/score tick
	TickIntervalMs = 1000.0

	MaxBulkFrames = 600
)

// Vehicle is the player-controlled car. X is the horizontal centre as a
// percentage of the field width.
type Vehicle struct {
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SpawnedObject is an obstacle or pickup scrolling down the field.
// X is the horizontal centre in percent, Y the top edge in pixels.
type SpawnedObject struct {
	ID     uint64     `json:"id"`
	Kind   ObjectKind `json:"kind"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Color  string     `json:"color,omitempty"`
	Hue    float64    `json:"hue,omitempty"`
}

// RunState is the complete authoritative state of one session
type RunState struct {
	Phase             Phase           `json:"phase"`
	Score             int             `json:"score"`
	Energy            int             `json:"energy"`
	MaxEnergy         int             `json:"max_energy"`
	Speed             float64         `json:"speed"`
	Frame             int             `json:"frame"`
	TimeAccumulatorMs float64         `json:"time_accumulator_ms"`
	Vehicle           Vehicle         `json:"vehicle"`
	Objects           []SpawnedObject `json:"objects"`
	NextID            uint64          `json:"next_id"`
	Message           string          `json:"message"`

	// Seed is the seed the spawn RNG was created with; RNG holds its
	// current serialized state so a restored run draws the same values.
	Seed uint64 `json:"seed"`
	RNG  []byte `json:"rng,omitempty"`

	// Computed helper view (not used by the simulation)
	EnergyRisk string `json:"energy_risk,omitempty"`
}

// Clone returns a deep copy of the state
func (rs *RunState) Clone() *RunState {
	if rs == nil {
		return nil
	}
	cp := *rs
	cp.Objects = make([]SpawnedObject, len(rs.Objects))
	copy(cp.Objects, rs.Objects)
	if rs.RNG != nil {
		cp.RNG = append([]byte(nil), rs.RNG...)
	}
	return &cp
}

// Collision records one consumed object
type Collision struct {
	ObjectID    uint64     `json:"object_id"`
	Kind        ObjectKind `json:"kind"`
	EnergyDelta int        `json:"energy_delta"`
}

// FrameReport describes what happened during one Advance call
type FrameReport struct {
	Frame        int         `json:"frame"`
	Advanced     bool        `json:"advanced"`
	Spawned      []uint64    `json:"spawned,omitempty"`
	Culled       int         `json:"culled,omitempty"`
	Collisions   []Collision `json:"collisions,omitempty"`
	EnergyDelta  int         `json:"energy_delta"`
	DrainTicks   int         `json:"drain_ticks,omitempty"`
	ScoreDelta   int         `json:"score_delta"`
	SpeedChanged bool        `json:"speed_changed,omitempty"`
	Hit          bool        `json:"hit,omitempty"`
	GameOver     bool        `json:"game_over,omitempty"`
}

// FrameInput is one entry of a bulk advance
type FrameInput struct {
	DeltaMs float64 `json:"delta_ms"`
	Input   Steer   `json:"input,omitempty"`
}

// FrameEvent is a compact history record derived from frame reports
type FrameEvent struct {
	Type      string     `json:"type"` // "start", "pickup", "hit", "speed_up", "game_over"
	Frame     int        `json:"frame"`
	ObjectID  uint64     `json:"object_id,omitempty"`
	Kind      ObjectKind `json:"kind,omitempty"`
	Energy    int        `json:"energy"`
	Score     int        `json:"score"`
	Speed     float64    `json:"speed"`
	Timestamp int64      `json:"timestamp"`
}

// EventsFromReport expands a report into history records using the
// state reached after the frame.
func EventsFromReport(report FrameReport, state *RunState) []FrameEvent {
	if !report.Advanced || state == nil {
		return nil
	}

	now := time.Now().Unix()
	var events []FrameEvent
	for _, c := range report.Collisions {
		eventType := "hit"
		if c.Kind == EnergyPickup {
			eventType = "pickup"
		}
		events = append(events, FrameEvent{
			Type:      eventType,
			Frame:     report.Frame,
			ObjectID:  c.ObjectID,
			Kind:      c.Kind,
			Energy:    state.Energy,
			Score:     state.Score,
			Speed:     state.Speed,
			Timestamp: now,
		})
	}
	if report.SpeedChanged {
		events = append(events, FrameEvent{
			Type:      "speed_up",
			Frame:     report.Frame,
			Energy:    state.Energy,
			Score:     state.Score,
			Speed:     state.Speed,
			Timestamp: now,
		})
	}
	if report.GameOver {
		events = append(events, FrameEvent{
			Type:      "game_over",
			Frame:     report.Frame,
			Energy:    state.Energy,
			Score:     state.Score,
			Speed:     state.Speed,
			Timestamp: now,
		})
	}
	return events
}
