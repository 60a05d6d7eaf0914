package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Engine provides the main interface for simulation operations
type Engine interface {
	// Session lifecycle
	StartSession() *RunState
	GetState() *RunState
	SetState(state *RunState) error
	Phase() Phase
	IsGameOver() bool

	// Simulation
	Advance(deltaMs float64, input Steer) (*RunState, FrameReport)
	AdvanceFrames(frames []FrameInput) []FrameReport
	ApplySteer(direction Steer) bool

	// Accessors
	GetScore() int
	GetEnergy() int
	GetSpeed() float64
	GetVehiclePosition() float64
	GetObjects() []SpawnedObject
	GetParams() *Params
}

// GameEngine implements the Engine interface. It is not safe for
// concurrent use; callers serialize Advance and ApplySteer.
type GameEngine struct {
	state  RunState
	params *Params
	seed   uint64
	pcg    *rand.PCG
	rnd    *rand.Rand
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithSeed seeds the spawn RNG for reproducible runs
func WithSeed(seed uint64) Option {
	return func(e *GameEngine) {
		e.reseed(seed)
	}
}

// NewEngine creates an engine in PhaseStart with the provided parameters
func NewEngine(params *Params, opts ...Option) (*GameEngine, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	e := &GameEngine{params: params}
	e.reseed(uint64(time.Now().UnixNano()))
	for _, opt := range opts {
		opt(e)
	}

	e.state = initialState(params, PhaseStart)
	e.state.Seed = e.seed
	e.state.Message = "Press start to begin your patrol"
	return e, nil
}

// NewEngineWithDefaults creates an engine using DefaultParams
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultParams())
	if err != nil {
		panic(fmt.Sprintf("default params invalid: %v", err))
	}
	return e
}

func (e *GameEngine) reseed(seed uint64) {
	e.pcg = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	e.rnd = rand.New(e.pcg)
	e.seed = seed
	e.state.Seed = seed
}

// Reseed replaces the spawn RNG with a freshly seeded one
func (e *GameEngine) Reseed(seed uint64) {
	e.reseed(seed)
}

// initialState builds the documented starting values
func initialState(p *Params, phase Phase) RunState {
	return RunState{
		Phase:     phase,
		Score:     0,
		Energy:    p.InitialEnergy,
		MaxEnergy: p.InitialEnergy,
		Speed:     p.InitialSpeed,
		Vehicle: Vehicle{
			X:      VehicleStartX,
			Width:  p.VehicleWidth,
			Height: p.VehicleHeight,
		},
		Objects: []SpawnedObject{},
		NextID:  1,
	}
}

// StartSession resets the run to its initial values and starts playing.
// The RNG keeps its position so consecutive runs differ.
func (e *GameEngine) StartSession() *RunState {
	e.state = initialState(e.params, PhasePlaying)
	e.state.Seed = e.seed
	e.state.Message = "Patrol started! Dodge the traffic and collect shields."
	return e.GetState()
}

// GetState returns a deep copy of the current state
func (e *GameEngine) GetState() *RunState {
	snapshot := e.state.Clone()
	if data, err := e.pcg.MarshalBinary(); err == nil {
		snapshot.RNG = data
	}
	snapshot.EnergyRisk = AnalyzeEnergyRisk(snapshot, e.params)
	return snapshot
}

// SetState restores a snapshot (used for persistence loading)
func (e *GameEngine) SetState(state *RunState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	switch state.Phase {
	case PhaseStart, PhasePlaying, PhaseGameOver:
	default:
		return fmt.Errorf("unknown phase %q", state.Phase)
	}

	restored := state.Clone()
	if len(restored.RNG) > 0 {
		pcg := &rand.PCG{}
		if err := pcg.UnmarshalBinary(restored.RNG); err != nil {
			return fmt.Errorf("failed to restore rng state: %w", err)
		}
		e.pcg = pcg
		e.rnd = rand.New(pcg)
	}
	restored.RNG = nil
	restored.EnergyRisk = ""
	if restored.Objects == nil {
		restored.Objects = []SpawnedObject{}
	}

	e.seed = restored.Seed
	e.state = *restored
	return nil
}

// Phase returns the session phase
func (e *GameEngine) Phase() Phase {
	return e.state.Phase
}

// IsGameOver returns whether the run has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state.Phase == PhaseGameOver
}

// Advance runs one frame. It is inert outside PhasePlaying.
func (e *GameEngine) Advance(deltaMs float64, input Steer) (*RunState, FrameReport) {
	next, report := Step(e.state, e.params, e.rnd, deltaMs, input)
	e.state = next
	return e.GetState(), report
}

// AdvanceFrames runs a sequence of frames, stopping once the run is over
func (e *GameEngine) AdvanceFrames(frames []FrameInput) []FrameReport {
	reports := make([]FrameReport, 0, len(frames))
	for _, f := range frames {
		if e.state.Phase != PhasePlaying {
			break
		}
		next, report := Step(e.state, e.params, e.rnd, f.DeltaMs, f.Input)
		e.state = next
		reports = append(reports, report)
	}
	return reports
}

// ApplySteer moves the vehicle one step. Ignored outside PhasePlaying.
func (e *GameEngine) ApplySteer(direction Steer) bool {
	if e.state.Phase != PhasePlaying {
		return false
	}
	return steerVehicle(&e.state.Vehicle, e.params, direction)
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetEnergy returns the current energy
func (e *GameEngine) GetEnergy() int {
	return e.state.Energy
}

// GetSpeed returns the current scroll speed
func (e *GameEngine) GetSpeed() float64 {
	return e.state.Speed
}

// GetVehiclePosition returns the vehicle centre in percent
func (e *GameEngine) GetVehiclePosition() float64 {
	return e.state.Vehicle.X
}

// GetObjects returns a copy of the active objects
func (e *GameEngine) GetObjects() []SpawnedObject {
	objects := make([]SpawnedObject, len(e.state.Objects))
	copy(objects, e.state.Objects)
	return objects
}

// GetParams returns the engine parameters
func (e *GameEngine) GetParams() *Params {
	return e.params
}
