package engine

// Rect is an axis-aligned box. Left/Right are percentages of the field
// width, Top/Bottom are pixels.
type Rect struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Overlaps reports whether two rectangles intersect. Touching edges do
// not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && r.Right > o.Left &&
		r.Top < o.Bottom && r.Bottom > o.Top
}

// VehicleRect returns the vehicle's box: a fixed band near the bottom of
// the field, centred horizontally on x.
func VehicleRect(p *Params, x float64) Rect {
	return Rect{
		Left:   x - p.VehicleWidth/2,
		Right:  x + p.VehicleWidth/2,
		Top:    p.FieldHeight - p.VehicleHeight - p.VehicleBottomMargin,
		Bottom: p.FieldHeight - p.VehicleBottomMargin,
	}
}

// ObjectRect returns the box of a spawned object
func ObjectRect(obj SpawnedObject) Rect {
	return Rect{
		Left:   obj.X - obj.Width/2,
		Right:  obj.X + obj.Width/2,
		Top:    obj.Y,
		Bottom: obj.Y + obj.Height,
	}
}

// CheckCollision reports whether the vehicle at x overlaps obj
func CheckCollision(p *Params, x float64, obj SpawnedObject) bool {
	return VehicleRect(p, x).Overlaps(ObjectRect(obj))
}
