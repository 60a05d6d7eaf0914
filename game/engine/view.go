package engine

import "strings"

// Glyphs used by LaneView
const (
	GlyphEmpty   = '.'
	GlyphVehicle = 'V'
	GlyphCar     = 'C'
	GlyphCone    = '^'
	GlyphEnergy  = '+'
)

// LaneView renders the field as rows of text, cols wide and rows tall.
// A cell shows whatever covers part of it; the vehicle is drawn last.
func LaneView(state *RunState, p *Params, cols, rows int) []string {
	if state == nil || p == nil || cols <= 0 || rows <= 0 {
		return nil
	}

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(string(GlyphEmpty), cols))
	}

	cellW := 100.0 / float64(cols)
	cellH := p.FieldHeight / float64(rows)
	paint := func(rect Rect, glyph rune) {
		for r := 0; r < rows; r++ {
			top := float64(r) * cellH
			if rect.Bottom <= top || rect.Top >= top+cellH {
				continue
			}
			for c := 0; c < cols; c++ {
				left := float64(c) * cellW
				if rect.Right <= left || rect.Left >= left+cellW {
					continue
				}
				grid[r][c] = glyph
			}
		}
	}

	for _, obj := range state.Objects {
		paint(ObjectRect(obj), glyphFor(obj.Kind))
	}
	paint(VehicleRect(p, state.Vehicle.X), GlyphVehicle)

	lines := make([]string, rows)
	for r, row := range grid {
		lines[r] = string(row)
	}
	return lines
}

func glyphFor(kind ObjectKind) rune {
	switch kind {
	case CivilianCar:
		return GlyphCar
	case Cone:
		return GlyphCone
	case EnergyPickup:
		return GlyphEnergy
	default:
		return '?'
	}
}
