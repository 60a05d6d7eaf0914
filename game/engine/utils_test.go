package engine

import "testing"

func TestCountKind(t *testing.T) {
	objects := []SpawnedObject{
		{Kind: Cone}, {Kind: CivilianCar}, {Kind: Cone}, {Kind: EnergyPickup},
	}
	if got := CountKind(objects, Cone); got != 2 {
		t.Errorf("Expected 2 cones, got %d", got)
	}
	if got := CountKind(nil, Cone); got != 0 {
		t.Errorf("Expected 0 for nil slice, got %d", got)
	}
}

func TestNearestThreat(t *testing.T) {
	p := DefaultParams()
	state := &RunState{
		Vehicle: Vehicle{X: 50},
		Objects: []SpawnedObject{
			{ID: 1, Kind: CivilianCar, X: 50, Y: 100, Width: 15, Height: 30},
			{ID: 2, Kind: Cone, X: 52, Y: 400, Width: 9, Height: 21},
			{ID: 3, Kind: EnergyPickup, X: 50, Y: 500, Width: 7.5, Height: 7.5},
			{ID: 4, Kind: CivilianCar, X: 10, Y: 550, Width: 15, Height: 30},
		},
	}

	threat, ok := NearestThreat(state, p)
	if !ok {
		t.Fatal("Expected a threat")
	}
	if threat.Object.ID != 2 {
		t.Errorf("Expected cone 2 to be nearest, got %d", threat.Object.ID)
	}
	if threat.Gap != 199 {
		t.Errorf("Expected gap 199, got %v", threat.Gap)
	}

	state.Objects = state.Objects[2:]
	if _, ok := NearestThreat(state, p); ok {
		t.Error("Expected no threat when only pickups and other lanes remain")
	}
}

func TestFramesUntil(t *testing.T) {
	tests := []struct {
		distance, speed float64
		expected        int
	}{
		{100, 4, 25},
		{101, 4, 26},
		{0, 4, 0},
		{10, 0, UnreachableFrames},
	}
	for _, test := range tests {
		if got := FramesUntil(test.distance, test.speed); got != test.expected {
			t.Errorf("FramesUntil(%v, %v): expected %d, got %d", test.distance, test.speed, test.expected, got)
		}
	}
}

func TestAnalyzeEnergyRisk(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		energy   int
		expected string
	}{
		{0, "CRITICAL"},
		{30, "DANGER"},
		{33, "LOW"},
		{34, "SAFE"},
		{100, "SAFE"},
	}

	for _, test := range tests {
		got := AnalyzeEnergyRisk(&RunState{Energy: test.energy}, p)
		if len(got) < len(test.expected) || got[:len(test.expected)] != test.expected {
			t.Errorf("Energy %d: expected %s risk, got %s", test.energy, test.expected, got)
		}
	}
}
