// Package effects holds the short presentation timers that follow a
// collision: the red hit flash and the screen shake. They count down in
// real milliseconds and never feed back into the simulation.
package effects

import "github.com/wricardo/mupol-patrol/game/engine"

// Timer is a countdown in milliseconds
type Timer struct {
	Duration  float64
	remaining float64
}

// NewTimer creates an idle timer
func NewTimer(durationMs float64) *Timer {
	return &Timer{Duration: durationMs}
}

// Trigger restarts the countdown from the full duration
func (t *Timer) Trigger() {
	t.remaining = t.Duration
}

// Tick counts down by deltaMs. Negative and NaN deltas are ignored.
func (t *Timer) Tick(deltaMs float64) {
	if !(deltaMs > 0) || t.remaining <= 0 {
		return
	}
	t.remaining -= deltaMs
	if t.remaining < 0 {
		t.remaining = 0
	}
}

// Active reports whether the countdown is still running
func (t *Timer) Active() bool {
	return t.remaining > 0
}

// Remaining returns the milliseconds left
func (t *Timer) Remaining() float64 {
	return t.remaining
}

// State is the snapshot sent to renderers alongside the run state
type State struct {
	Hit   bool `json:"hit" msgpack:"hit"`
	Shake bool `json:"shake" msgpack:"shake"`
}

// Effects groups the timers triggered by a hit
type Effects struct {
	Hit   *Timer
	Shake *Timer
}

// New creates effect timers sized from the params
func New(p *engine.Params) *Effects {
	return &Effects{
		Hit:   NewTimer(p.HitFlashMs),
		Shake: NewTimer(p.ShakeMs),
	}
}

// Observe triggers both timers when the frame recorded an obstacle hit
func (e *Effects) Observe(report engine.FrameReport) {
	if !report.Hit {
		return
	}
	e.Hit.Trigger()
	e.Shake.Trigger()
}

// Tick advances both timers
func (e *Effects) Tick(deltaMs float64) {
	e.Hit.Tick(deltaMs)
	e.Shake.Tick(deltaMs)
}

// Reset stops both timers
func (e *Effects) Reset() {
	e.Hit.remaining = 0
	e.Shake.remaining = 0
}

// State returns the current flags
func (e *Effects) State() State {
	return State{Hit: e.Hit.Active(), Shake: e.Shake.Active()}
}
