package effects

import (
	"testing"

	"github.com/wricardo/mupol-patrol/game/engine"
)

func TestTimer(t *testing.T) {
	timer := NewTimer(300)
	if timer.Active() {
		t.Error("Expected new timer to be idle")
	}

	timer.Trigger()
	timer.Tick(100)
	if !timer.Active() || timer.Remaining() != 200 {
		t.Errorf("Expected 200ms remaining, got %v", timer.Remaining())
	}

	timer.Tick(-50)
	if timer.Remaining() != 200 {
		t.Errorf("Expected negative tick to be ignored, got %v", timer.Remaining())
	}

	timer.Tick(250)
	if timer.Active() || timer.Remaining() != 0 {
		t.Errorf("Expected timer to expire at 0, got %v", timer.Remaining())
	}

	// Retrigger restarts from the full duration
	timer.Trigger()
	timer.Tick(50)
	timer.Trigger()
	if timer.Remaining() != 300 {
		t.Errorf("Expected retrigger to reset to 300, got %v", timer.Remaining())
	}
}

func TestEffects_ObserveHit(t *testing.T) {
	fx := New(engine.DefaultParams())

	fx.Observe(engine.FrameReport{Advanced: true})
	if fx.State().Hit || fx.State().Shake {
		t.Error("Expected no effects without a hit")
	}

	fx.Observe(engine.FrameReport{Advanced: true, Hit: true})
	state := fx.State()
	if !state.Hit || !state.Shake {
		t.Errorf("Expected hit and shake after a hit, got %+v", state)
	}

	// Shake (200ms) ends before the flash (300ms)
	fx.Tick(250)
	state = fx.State()
	if !state.Hit || state.Shake {
		t.Errorf("Expected only the flash after 250ms, got %+v", state)
	}

	fx.Tick(60)
	if fx.State().Hit {
		t.Error("Expected flash to end after 310ms")
	}
}

func TestEffects_Reset(t *testing.T) {
	fx := New(engine.DefaultParams())
	fx.Observe(engine.FrameReport{Hit: true})
	fx.Reset()

	if state := fx.State(); state.Hit || state.Shake {
		t.Errorf("Expected reset to clear effects, got %+v", state)
	}
}
