package main

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
)

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          layout
		ok            bool
	}{
		{"wide terminal caps road width", 80, 24, layout{Left: 20, Top: 2, Cols: 40, Rows: 21}, true},
		{"narrow terminal", 30, 20, layout{Left: 1, Top: 2, Cols: 28, Rows: 17}, true},
		{"too small", 8, 6, layout{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := computeLayout(tt.width, tt.height)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestCellSpan(t *testing.T) {
	p := engine.DefaultParams()
	l := layout{Cols: 20, Rows: 14}

	// Vehicle centred: 43.75%..56.25% wide, 620..680 px tall
	c0, c1, r0, r1, ok := l.cellSpan(engine.VehicleRect(p, engine.VehicleStartX), p)
	if !ok {
		t.Fatal("Expected vehicle to be on the road")
	}
	if c0 != 8 || c1 != 11 || r0 != 12 || r1 != 13 {
		t.Errorf("Expected cols 8..11 rows 12..13, got cols %d..%d rows %d..%d", c0, c1, r0, r1)
	}

	// Objects above the field are clipped away
	above := engine.ObjectRect(engine.SpawnedObject{X: 50, Y: -40, Width: 15, Height: 30})
	if _, _, _, _, ok := l.cellSpan(above, p); ok {
		t.Error("Expected object above the field to be hidden")
	}

	// Partially visible objects are clipped to the first row
	entering := engine.ObjectRect(engine.SpawnedObject{X: 50, Y: -10, Width: 15, Height: 30})
	_, _, r0, r1, ok = l.cellSpan(entering, p)
	if !ok || r0 != 0 || r1 != 0 {
		t.Errorf("Expected entering object on row 0, got rows %d..%d ok=%v", r0, r1, ok)
	}
}

func TestCarStyle(t *testing.T) {
	p := engine.DefaultParams()

	// hsl(0, 20%, 60%) is a muted red: rgb(173, 133, 133)
	_, bg, _ := carStyle(0, p).Decompose()
	r, g, b := bg.RGB()
	if r != 173 || g != 133 || b != 133 {
		t.Errorf("Expected rgb(173,133,133), got rgb(%d,%d,%d)", r, g, b)
	}
}

func TestObjectLook(t *testing.T) {
	p := engine.DefaultParams()

	tests := []struct {
		kind  engine.ObjectKind
		glyph rune
		ok    bool
	}{
		{engine.CivilianCar, engine.GlyphCar, true},
		{engine.Cone, engine.GlyphCone, true},
		{engine.EnergyPickup, engine.GlyphEnergy, true},
		{engine.ObjectKind("tanker"), 0, false},
	}

	for _, tt := range tests {
		glyph, _, ok := objectLook(engine.SpawnedObject{Kind: tt.kind}, p)
		if ok != tt.ok || glyph != tt.glyph {
			t.Errorf("%s: expected (%q, %v), got (%q, %v)", tt.kind, tt.glyph, tt.ok, glyph, ok)
		}
	}
}

func TestEnergyBar(t *testing.T) {
	tests := []struct {
		energy, max, size int
		want              string
	}{
		{100, 100, 10, "[##########]"},
		{70, 100, 10, "[#######---]"},
		{0, 100, 4, "[----]"},
		{-5, 100, 4, "[----]"},
		{10, 0, 4, ""},
	}

	for _, tt := range tests {
		if got := energyBar(tt.energy, tt.max, tt.size); got != tt.want {
			t.Errorf("energyBar(%d, %d, %d): expected %s, got %s", tt.energy, tt.max, tt.size, tt.want, got)
		}
	}
}

func TestHUDAndBanner(t *testing.T) {
	state := &engine.RunState{Phase: engine.PhaseGameOver, Energy: 0, MaxEnergy: 100, Score: 40, Speed: 5.5}

	hud := hudLine(state)
	if !strings.Contains(hud, "0/100") || !strings.Contains(hud, "Score 40") || !strings.Contains(hud, "Speed 5.5") {
		t.Errorf("Unexpected HUD: %s", hud)
	}

	if msg := banner(state); !strings.Contains(msg, "score 40") {
		t.Errorf("Expected final score in banner, got %s", msg)
	}
	state.Phase = engine.PhasePlaying
	if msg := banner(state); msg != "" {
		t.Errorf("Expected no banner while playing, got %s", msg)
	}
}

func TestFrameInterval(t *testing.T) {
	if got := frameInterval(30); got != time.Second/30 {
		t.Errorf("Expected 1/30 s, got %v", got)
	}
	if got := frameInterval(0); got != time.Second/60 {
		t.Errorf("Expected default 1/60 s, got %v", got)
	}
	if got := frameInterval(1000); got != time.Second/60 {
		t.Errorf("Expected default for out of range fps, got %v", got)
	}
}

func TestDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(80, 24)

	p := engine.DefaultParams()
	state := &engine.RunState{
		Phase:     engine.PhasePlaying,
		Energy:    100,
		MaxEnergy: 100,
		Speed:     4,
		Vehicle:   engine.Vehicle{X: engine.VehicleStartX},
		Objects: []engine.SpawnedObject{
			{ID: 1, Kind: engine.EnergyPickup, X: 50, Y: 350, Width: 7.5, Height: 7.5},
		},
	}

	draw(screen, state, p, effects.State{})

	l, _ := computeLayout(80, 24)
	// Vehicle sits on the last road rows, in the middle columns
	mainc, _, _, _ := screen.GetContent(l.Left+l.Cols/2, l.Top+l.Rows-2)
	if mainc != engine.GlyphVehicle {
		t.Errorf("Expected vehicle glyph, got %q", mainc)
	}

	// Pickup halfway down the road
	mainc, _, _, _ = screen.GetContent(l.Left+l.Cols/2, l.Top+l.Rows/2)
	if mainc != engine.GlyphEnergy {
		t.Errorf("Expected energy glyph, got %q", mainc)
	}

	// HUD on the first line
	mainc, _, _, _ = screen.GetContent(l.Left-1, 0)
	if mainc != 'M' {
		t.Errorf("Expected HUD text, got %q", mainc)
	}
}
