package engine

import (
	"fmt"
	"math"
	"strings"
)

// ParseSteer converts a direction name into a Steer value. The empty
// string means no steering.
func ParseSteer(direction string) (Steer, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "left":
		return SteerLeft, nil
	case "right":
		return SteerRight, nil
	case "", "none":
		return SteerNone, nil
	default:
		return SteerNone, fmt.Errorf("unknown steering direction %q", direction)
	}
}

// steerVehicle moves the vehicle one step and clamps it to the field.
// It reports whether the position changed.
func steerVehicle(v *Vehicle, p *Params, dir Steer) bool {
	prev := v.X
	switch dir {
	case SteerLeft:
		v.X = math.Max(p.MinVehicleX(), v.X-p.MoveStep)
	case SteerRight:
		v.X = math.Min(p.MaxVehicleX(), v.X+p.MoveStep)
	default:
		return false
	}
	return v.X != prev
}

// moveObjects scrolls every object down by speed and drops the ones that
// have left the field by more than the cull margin. The result is a new
// slice.
func moveObjects(objects []SpawnedObject, p *Params, speed float64) ([]SpawnedObject, int) {
	limit := p.FieldHeight + p.CullMargin
	moved := make([]SpawnedObject, 0, len(objects)+2)
	culled := 0
	for _, obj := range objects {
		obj.Y += speed
		if obj.Y >= limit {
			culled++
			continue
		}
		moved = append(moved, obj)
	}
	return moved, culled
}

// clampEnergy keeps energy within [0, max]
func clampEnergy(energy, max int) int {
	if energy < 0 {
		return 0
	}
	if energy > max {
		return max
	}
	return energy
}

// sanitizeDelta treats negative or non-finite frame durations as zero
func sanitizeDelta(deltaMs float64) float64 {
	if math.IsNaN(deltaMs) || math.IsInf(deltaMs, 0) || deltaMs < 0 {
		return 0
	}
	return deltaMs
}
