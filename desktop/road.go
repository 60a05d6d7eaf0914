package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	roadColor   = color.RGBA{60, 60, 66, 255}
	stripeColor = color.RGBA{200, 200, 200, 255}
	patrolColor = color.RGBA{40, 80, 220, 255}
	hitColor    = color.RGBA{230, 40, 40, 255}
	coneColor   = color.RGBA{255, 140, 0, 255}
	shieldColor = color.RGBA{255, 215, 0, 255}
	fallbackCar = color.RGBA{180, 180, 180, 255}
	energyBg    = color.RGBA{40, 40, 40, 255}
	energyFill  = color.RGBA{60, 200, 90, 255}
	energyLow   = color.RGBA{220, 60, 60, 255}
)

const (
	stripeHeight = 40.0
	shakeOffset  = 4.0
)

// fieldView maps field coordinates (percent of width, pixels of height)
// onto the window
type fieldView struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Scale  float64
}

func newFieldView(p *Params) fieldView {
	height := float64(screenHeight - headerHeight - footerHeight)
	scale := height / p.FieldHeight
	width := p.FieldWidth * scale
	return fieldView{
		Left:   (float64(screenWidth) - width) / 2,
		Top:    float64(headerHeight),
		Width:  width,
		Height: height,
		Scale:  scale,
	}
}

// box converts a centred box into window pixels
func (v fieldView) box(xPct, y, widthPct, height float64) (float64, float64, float64, float64) {
	w := widthPct / 100 * v.Width
	return v.Left + (xPct-widthPct/2)/100*v.Width, v.Top + y*v.Scale, w, height * v.Scale
}

// bounds is the road area in window pixels
func (v fieldView) bounds() image.Rectangle {
	return image.Rect(int(v.Left), int(v.Top), int(v.Left+v.Width), int(v.Top+v.Height))
}

// objectColor picks the fill for a road object. Civilian cars use their
// own hue with the preset's saturation and lightness.
func objectColor(obj SpawnedObject, p *Params) color.Color {
	switch obj.Kind {
	case kindCar:
		c := colorful.Hsl(obj.Hue, p.CarSaturation/100, p.CarLightness/100).Clamped()
		r, g, b := c.RGB255()
		return color.RGBA{r, g, b, 255}
	case kindCone:
		return coneColor
	case kindShield:
		return shieldColor
	default:
		return fallbackCar
	}
}

// shakeX is the horizontal jitter of the road while the shake effect runs
func shakeX(fx Effects, frame int) float64 {
	if !fx.Shake {
		return 0
	}
	if frame%2 == 0 {
		return shakeOffset
	}
	return -shakeOffset
}

// energyRatio is the filled fraction of the energy bar
func energyRatio(state *RunState) float64 {
	if state.MaxEnergy <= 0 {
		return 0
	}
	ratio := float64(state.Energy) / float64(state.MaxEnergy)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// drawRoad renders one session's field with its objects and patrol car
func drawRoad(screen *ebiten.Image, state *RunState, p *Params, fx Effects) {
	view := newFieldView(p)
	view.Left += shakeX(fx, state.Frame)

	road := screen.SubImage(view.bounds()).(*ebiten.Image)
	road.Fill(roadColor)

	// Lane stripes scroll with the frame counter
	offset := float64(state.Frame) * state.Speed
	for lane := 1; lane < 3; lane++ {
		x := view.Left + view.Width*float64(lane)/3
		for y := -stripeHeight*2 + mod(offset, stripeHeight*2); y < p.FieldHeight; y += stripeHeight * 2 {
			ebitenutil.DrawRect(road, x-1, view.Top+y*view.Scale, 2, stripeHeight*view.Scale, stripeColor)
		}
	}

	for _, obj := range state.Objects {
		x, y, w, h := view.box(obj.X, obj.Y, obj.Width, obj.Height)
		ebitenutil.DrawRect(road, x, y, w, h, objectColor(obj, p))
	}

	vehicleColor := color.Color(patrolColor)
	if fx.Hit {
		vehicleColor = hitColor
	}
	vehicleY := p.FieldHeight - p.VehicleHeight - p.VehicleBottomMargin
	x, y, w, h := view.box(state.Vehicle.X, vehicleY, p.VehicleWidth, p.VehicleHeight)
	ebitenutil.DrawRect(road, x, y, w, h, vehicleColor)

	if state.Phase != phasePlaying {
		banner := "Press ENTER to start the patrol"
		if state.Phase == phaseGameOver {
			banner = fmt.Sprintf("GAME OVER - score %d - ENTER to patrol again", state.Score)
		}
		ebitenutil.DebugPrintAt(screen, banner, int(view.Left)+10, int(view.Top+view.Height/2))
	}
}

// drawEnergyBar renders the energy meter at the given position
func drawEnergyBar(screen *ebiten.Image, state *RunState, x, y, w, h float64) {
	ebitenutil.DrawRect(screen, x, y, w, h, energyBg)
	fill := color.Color(energyFill)
	if energyRatio(state) <= 0.3 {
		fill = energyLow
	}
	ebitenutil.DrawRect(screen, x, y, w*energyRatio(state), h, fill)
}

func mod(a, b float64) float64 {
	m := a - b*float64(int(a/b))
	if m < 0 {
		m += b
	}
	return m
}
