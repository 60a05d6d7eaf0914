package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
)

type action int

const (
	actionNone action = iota
	actionLeft
	actionRight
	actionStart
	actionQuit
)

// keyAction maps a key press to a game action
func keyAction(key tcell.Key, r rune) action {
	switch key {
	case tcell.KeyLeft:
		return actionLeft
	case tcell.KeyRight:
		return actionRight
	case tcell.KeyEnter:
		return actionStart
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyRune:
		switch r {
		case 'h', 'a', 'H', 'A':
			return actionLeft
		case 'l', 'd', 'L', 'D':
			return actionRight
		case ' ':
			return actionStart
		case 'q', 'Q':
			return actionQuit
		}
	}
	return actionNone
}

// game owns the engine and the presentation timers. It is only touched
// from the host loop goroutine.
type game struct {
	engine *engine.GameEngine
	params *engine.Params
	fx     *effects.Effects
	screen tcell.Screen
	sound  *hitSound
	state  *engine.RunState
}

func newGame(eng *engine.GameEngine, screen tcell.Screen, sound *hitSound) *game {
	return &game{
		engine: eng,
		params: eng.GetParams(),
		fx:     effects.New(eng.GetParams()),
		screen: screen,
		sound:  sound,
		state:  eng.GetState(),
	}
}

// handleEvent applies one terminal event. It returns false when the player
// quits.
func (g *game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return g.apply(keyAction(ev.Key(), ev.Rune()))
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// apply performs an action. Steering moves the car immediately; starting
// is ignored while a patrol is running.
func (g *game) apply(a action) bool {
	switch a {
	case actionLeft:
		g.engine.ApplySteer(engine.SteerLeft)
	case actionRight:
		g.engine.ApplySteer(engine.SteerRight)
	case actionStart:
		if g.engine.Phase() != engine.PhasePlaying {
			g.engine.StartSession()
			g.fx.Reset()
		}
	case actionQuit:
		return false
	}
	g.state = g.engine.GetState()
	return true
}

// step advances one host frame and redraws
func (g *game) step(deltaMs float64) bool {
	state, report := g.engine.Advance(deltaMs, engine.SteerNone)
	g.fx.Observe(report)
	g.fx.Tick(deltaMs)
	if report.Hit {
		g.sound.Play()
	}
	g.state = state

	draw(g.screen, g.state, g.params, g.fx.State())
	return true
}
