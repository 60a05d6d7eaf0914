package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/wricardo/mupol-patrol/game/effects"
	"github.com/wricardo/mupol-patrol/game/engine"
)

const (
	maxRoadCols   = 40
	energyBarSize = 20
)

var (
	styleRoad    = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleVehicle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleHit     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed)
	styleCone    = tcell.StyleDefault.Foreground(tcell.ColorOrange).Background(tcell.ColorBlack)
	styleEnergy  = tcell.StyleDefault.Foreground(tcell.ColorLime).Background(tcell.ColorBlack).Bold(true)
)

// layout places the road inside the terminal. The road is Cols x Rows cells
// with its top-left cell at (Left, Top); the HUD sits on the line above.
type layout struct {
	Left, Top  int
	Cols, Rows int
}

// computeLayout fits the road into a width x height terminal, leaving room
// for a border and the HUD line. ok is false when the terminal is too small.
func computeLayout(width, height int) (layout, bool) {
	rows := height - 3
	cols := width - 2
	if cols > maxRoadCols {
		cols = maxRoadCols
	}
	if rows < 5 || cols < 10 {
		return layout{}, false
	}
	return layout{
		Left: (width-cols)/2,
		Top:  2,
		Cols: cols,
		Rows: rows,
	}, true
}

// cellSpan converts a field rectangle into the inclusive cell range it
// covers. ok is false when the rectangle is outside the road.
func (l layout) cellSpan(r engine.Rect, p *engine.Params) (c0, c1, r0, r1 int, ok bool) {
	cellW := 100.0 / float64(l.Cols)
	cellH := p.FieldHeight / float64(l.Rows)

	c0 = int(math.Floor(r.Left / cellW))
	c1 = int(math.Ceil(r.Right/cellW)) - 1
	r0 = int(math.Floor(r.Top / cellH))
	r1 = int(math.Ceil(r.Bottom/cellH)) - 1

	c0, c1 = max(c0, 0), min(c1, l.Cols-1)
	r0, r1 = max(r0, 0), min(r1, l.Rows-1)
	return c0, c1, r0, r1, c0 <= c1 && r0 <= r1
}

// carStyle colours a civilian car from its hue with the preset's HSL
// saturation and lightness
func carStyle(hue float64, p *engine.Params) tcell.Style {
	c := colorful.Hsl(hue, p.CarSaturation/100, p.CarLightness/100)
	r, g, b := c.Clamped().RGB255()
	return tcell.StyleDefault.Foreground(tcell.ColorBlack).
		Background(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

// objectLook returns the glyph and style of an object. Unknown kinds are
// not drawn.
func objectLook(obj engine.SpawnedObject, p *engine.Params) (rune, tcell.Style, bool) {
	switch obj.Kind {
	case engine.CivilianCar:
		return engine.GlyphCar, carStyle(obj.Hue, p), true
	case engine.Cone:
		return engine.GlyphCone, styleCone, true
	case engine.EnergyPickup:
		return engine.GlyphEnergy, styleEnergy, true
	default:
		return 0, tcell.StyleDefault, false
	}
}

// energyBar renders energy as a fixed-width gauge
func energyBar(energy, maxEnergy, size int) string {
	if maxEnergy <= 0 || size <= 0 {
		return ""
	}
	filled := int(math.Round(float64(energy) / float64(maxEnergy) * float64(size)))
	filled = min(max(filled, 0), size)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", size-filled) + "]"
}

// hudLine is the status line drawn above the road
func hudLine(state *engine.RunState) string {
	return fmt.Sprintf("MUPOL %s %3d/%d  Score %d  Speed %.1f",
		energyBar(state.Energy, state.MaxEnergy, energyBarSize),
		state.Energy, state.MaxEnergy, state.Score, state.Speed)
}

// banner is the centred message shown outside of play
func banner(state *engine.RunState) string {
	switch state.Phase {
	case engine.PhaseStart:
		return "MUPOL PATROL - press Enter to start"
	case engine.PhaseGameOver:
		return fmt.Sprintf("PATROL OVER - score %d - Enter to restart", state.Score)
	default:
		return ""
	}
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

// draw renders one frame. The shake effect offsets the road by one column
// on alternating frames.
func draw(screen tcell.Screen, state *engine.RunState, p *engine.Params, fx effects.State) {
	screen.Clear()
	width, height := screen.Size()
	l, ok := computeLayout(width, height)
	if !ok {
		drawText(screen, 0, 0, "terminal too small", styleHUD)
		screen.Show()
		return
	}
	if fx.Shake && state.Frame%2 == 1 {
		l.Left++
	}

	drawText(screen, l.Left-1, 0, hudLine(state), styleHUD)

	for row := -1; row <= l.Rows; row++ {
		screen.SetContent(l.Left-1, l.Top+row, '|', nil, styleBorder)
		screen.SetContent(l.Left+l.Cols, l.Top+row, '|', nil, styleBorder)
	}
	for row := 0; row < l.Rows; row++ {
		for col := 0; col < l.Cols; col++ {
			screen.SetContent(l.Left+col, l.Top+row, ' ', nil, styleRoad)
		}
	}

	paint := func(rect engine.Rect, glyph rune, style tcell.Style) {
		c0, c1, r0, r1, ok := l.cellSpan(rect, p)
		if !ok {
			return
		}
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				screen.SetContent(l.Left+col, l.Top+row, glyph, nil, style)
			}
		}
	}

	for _, obj := range state.Objects {
		if glyph, style, ok := objectLook(obj, p); ok {
			paint(engine.ObjectRect(obj), glyph, style)
		}
	}

	vehicleStyle := styleVehicle
	if fx.Hit {
		vehicleStyle = styleHit
	}
	paint(engine.VehicleRect(p, state.Vehicle.X), engine.GlyphVehicle, vehicleStyle)

	if msg := banner(state); msg != "" {
		x := l.Left + (l.Cols-len(msg))/2
		drawText(screen, max(x, 0), l.Top+l.Rows/2, msg, styleHUD)
	}

	screen.Show()
}
