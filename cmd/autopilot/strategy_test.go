package main

import (
	"testing"

	"github.com/wricardo/mupol-patrol/game/engine"
)

func roadState(energy int, objects ...engine.SpawnedObject) *engine.RunState {
	return &engine.RunState{
		Phase:     engine.PhasePlaying,
		Energy:    energy,
		MaxEnergy: 100,
		Speed:     4,
		Vehicle:   engine.Vehicle{X: 50},
		Objects:   objects,
	}
}

func TestStrategy_EmptyRoadHoldsLane(t *testing.T) {
	s := NewStrategy(engine.DefaultParams())

	frames := s.NextFrames(roadState(100), 10)
	if len(frames) != 10 {
		t.Fatalf("Expected 10 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Input != engine.SteerNone {
			t.Errorf("Frame %d: expected no steering on an empty road, got %s", i, f.Input)
		}
		if f.DeltaMs != engine.DefaultParams().NominalFrameMs {
			t.Errorf("Frame %d: expected nominal delta, got %f", i, f.DeltaMs)
		}
	}

	if target, ok := s.Target(); !ok || target != 50 {
		t.Errorf("Expected target 50, got %f (set=%v)", target, ok)
	}
}

func TestStrategy_DodgesCarInLane(t *testing.T) {
	p := engine.DefaultParams()
	s := NewStrategy(p)
	car := engine.SpawnedObject{ID: 1, Kind: engine.CivilianCar, X: 50, Y: 400, Width: p.ObstacleWidth, Height: p.ObstacleHeight}
	state := roadState(100, car)

	frames := s.NextFrames(state, 10)
	if frames[0].Input == engine.SteerNone {
		t.Error("Expected the first frame to steer away from the car")
	}

	target, _ := s.Target()
	if cost := s.evaluate(state, target, s.horizon(state.Speed)); cost >= hitCost {
		t.Errorf("Expected a collision-free plan, got cost %f", cost)
	}
	if cost := s.evaluate(state, 50, s.horizon(state.Speed)); cost < hitCost {
		t.Errorf("Expected holding the lane to hit the car, got cost %f", cost)
	}
}

func TestStrategy_ChasesShieldWhenLow(t *testing.T) {
	p := engine.DefaultParams()
	s := NewStrategy(p)
	shield := engine.SpawnedObject{ID: 2, Kind: engine.EnergyPickup, X: 62, Y: 500, Width: p.PickupSize, Height: p.PickupSize}

	frames := s.NextFrames(roadState(20, shield), 5)
	if frames[0].Input != engine.SteerRight {
		t.Errorf("Expected to steer right toward the shield, got %s", frames[0].Input)
	}
	if target, _ := s.Target(); target <= 50 {
		t.Errorf("Expected a target right of the lane, got %f", target)
	}
}

func TestStrategy_Candidates(t *testing.T) {
	p := engine.DefaultParams()
	s := NewStrategy(p)

	candidates := s.candidates(50)
	if candidates[0] != 50 {
		t.Errorf("Expected current position first, got %f", candidates[0])
	}
	if candidates[1] != 47 || candidates[2] != 53 {
		t.Errorf("Expected nearest steps next, got %f and %f", candidates[1], candidates[2])
	}

	seen := make(map[float64]bool)
	for _, c := range candidates {
		if seen[c] {
			t.Errorf("Duplicate candidate %f", c)
		}
		seen[c] = true
		if c < p.MinVehicleX() || c > p.MaxVehicleX() {
			t.Errorf("Candidate %f outside the road", c)
		}
	}
	if !seen[p.MinVehicleX()] || !seen[p.MaxVehicleX()] {
		t.Error("Expected both road edges among the candidates")
	}
}

func TestSteerToward(t *testing.T) {
	p := engine.DefaultParams()

	tests := []struct {
		name   string
		x      float64
		target float64
		input  engine.Steer
		next   float64
	}{
		{"right", 50, 56, engine.SteerRight, 53},
		{"left", 50, 44, engine.SteerLeft, 47},
		{"reached", 50, 51, engine.SteerNone, 50},
		{"edge clamps", 8, p.MinVehicleX(), engine.SteerLeft, p.MinVehicleX()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, next := steerToward(tt.x, tt.target, p)
			if input != tt.input || next != tt.next {
				t.Errorf("Expected (%s, %f), got (%s, %f)", tt.input, tt.next, input, next)
			}
		})
	}
}

func TestStrategy_Horizon(t *testing.T) {
	s := NewStrategy(engine.DefaultParams())

	if h := s.horizon(4); h != 190 {
		t.Errorf("Expected horizon 190 at speed 4, got %d", h)
	}
	if h := s.horizon(0); h != maxHorizon {
		t.Errorf("Expected horizon capped at %d, got %d", maxHorizon, h)
	}
}

func TestStrategy_Reset(t *testing.T) {
	s := NewStrategy(engine.DefaultParams())
	s.NextFrames(roadState(100), 1)
	s.NextFrames(roadState(100), 1)

	if s.Replans() != 2 {
		t.Errorf("Expected 2 plans, got %d", s.Replans())
	}
	s.Reset()
	if _, ok := s.Target(); ok || s.Replans() != 0 {
		t.Error("Expected Reset to clear the target and plan count")
	}
}
