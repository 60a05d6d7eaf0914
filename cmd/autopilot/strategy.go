package main

import (
	"math"

	"github.com/wricardo/mupol-patrol/game/engine"
)

const (
	hitCost        = 1000.0
	pickupValue    = 40.0
	lowPickupValue = 400.0
	moveCost       = 0.05
	maxHorizon     = 400
)

// Strategy picks a lane for the patrol car by simulating every reachable
// target position against the objects already on the road. Future spawns
// are unknown, so plans are short and recomputed after every chunk.
type Strategy struct {
	params *engine.Params

	// LowEnergy is the energy at or below which shields outweigh a
	// straight path
	LowEnergy int

	target    float64
	hasTarget bool
	replans   int
}

func NewStrategy(p *engine.Params) *Strategy {
	return &Strategy{
		params:    p,
		LowEnergy: p.InitialEnergy / 2,
	}
}

// Reset forgets the current target before a new attempt
func (s *Strategy) Reset() {
	s.hasTarget = false
	s.replans = 0
}

// horizon is how many frames it takes an object at the spawn line to pass
// the bottom of the vehicle at the given speed
func (s *Strategy) horizon(speed float64) int {
	distance := s.params.FieldHeight + 2*math.Max(s.params.ObstacleHeight, s.params.PickupSize)
	frames := engine.FramesUntil(distance, speed)
	if frames > maxHorizon {
		return maxHorizon
	}
	return frames
}

// candidates lists the positions reachable in whole steps from x, nearest
// first so ties keep the car where it is
func (s *Strategy) candidates(x float64) []float64 {
	p := s.params
	out := []float64{x}
	if p.MoveStep <= 0 {
		return out
	}

	var lefts, rights []float64
	for v := x - p.MoveStep; v > p.MinVehicleX(); v -= p.MoveStep {
		lefts = append(lefts, v)
	}
	if x > p.MinVehicleX() {
		lefts = append(lefts, p.MinVehicleX())
	}
	for v := x + p.MoveStep; v < p.MaxVehicleX(); v += p.MoveStep {
		rights = append(rights, v)
	}
	if x < p.MaxVehicleX() {
		rights = append(rights, p.MaxVehicleX())
	}

	for i := 0; i < len(lefts) || i < len(rights); i++ {
		if i < len(lefts) {
			out = append(out, lefts[i])
		}
		if i < len(rights) {
			out = append(out, rights[i])
		}
	}
	return out
}

// evaluate simulates driving toward target and returns the plan's cost.
// Movement and collision follow the engine's frame order: steer, scroll,
// then test overlaps.
func (s *Strategy) evaluate(state *engine.RunState, target float64, horizon int) float64 {
	p := s.params
	x := state.Vehicle.X
	objects := make([]engine.SpawnedObject, len(state.Objects))
	copy(objects, state.Objects)
	consumed := make([]bool, len(objects))

	shieldValue := pickupValue
	if state.Energy <= s.LowEnergy {
		shieldValue = lowPickupValue
	}

	cost := math.Abs(target-x) * moveCost
	for f := 1; f <= horizon; f++ {
		_, x = steerToward(x, target, p)
		vehicle := engine.VehicleRect(p, x)
		for i := range objects {
			if consumed[i] {
				continue
			}
			objects[i].Y += state.Speed
			if !vehicle.Overlaps(engine.ObjectRect(objects[i])) {
				continue
			}
			consumed[i] = true
			// Earlier events weigh more than ones the next plan can still fix
			weight := 1 + float64(horizon-f)/float64(horizon)
			if objects[i].Kind == engine.EnergyPickup {
				cost -= shieldValue * weight
			} else {
				cost += hitCost * weight
			}
		}
	}
	return cost
}

// steerToward returns the input that moves x toward target and where the
// engine puts the car after it. Targets within half a step count as reached.
func steerToward(x, target float64, p *engine.Params) (engine.Steer, float64) {
	half := p.MoveStep / 2
	switch {
	case target-x > half:
		return engine.SteerRight, math.Min(p.MaxVehicleX(), x+p.MoveStep)
	case x-target > half:
		return engine.SteerLeft, math.Max(p.MinVehicleX(), x-p.MoveStep)
	default:
		return engine.SteerNone, x
	}
}

// choose returns the cheapest target for the current state
func (s *Strategy) choose(state *engine.RunState) float64 {
	horizon := s.horizon(state.Speed)
	best := state.Vehicle.X
	bestCost := math.Inf(1)
	for _, target := range s.candidates(state.Vehicle.X) {
		if cost := s.evaluate(state, target, horizon); cost < bestCost {
			best, bestCost = target, cost
		}
	}
	return best
}

// NextFrames plans the next count frames. Each frame lasts one nominal
// frame and steers one step toward the chosen target.
func (s *Strategy) NextFrames(state *engine.RunState, count int) []engine.FrameInput {
	s.target = s.choose(state)
	s.hasTarget = true
	s.replans++

	frames := make([]engine.FrameInput, 0, count)
	x := state.Vehicle.X
	for i := 0; i < count; i++ {
		var input engine.Steer
		input, x = steerToward(x, s.target, s.params)
		frames = append(frames, engine.FrameInput{DeltaMs: s.params.NominalFrameMs, Input: input})
	}
	return frames
}

// Target reports the last chosen position
func (s *Strategy) Target() (float64, bool) {
	return s.target, s.hasTarget
}

// Replans counts the plans made since the last Reset
func (s *Strategy) Replans() int {
	return s.replans
}
