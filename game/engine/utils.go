package engine

// CountKind counts the objects of a specific kind
func CountKind(objects []SpawnedObject, kind ObjectKind) int {
	count := 0
	for _, obj := range objects {
		if obj.Kind == kind {
			count++
		}
	}
	return count
}

// Threat is an obstacle in the vehicle's lane and the pixels left before
// it reaches the vehicle's top edge.
type Threat struct {
	Object SpawnedObject `json:"object"`
	Gap    float64       `json:"gap"`
}

// NearestThreat finds the closest obstacle above the vehicle whose
// horizontal band overlaps the vehicle's
func NearestThreat(state *RunState, p *Params) (Threat, bool) {
	vehicle := VehicleRect(p, state.Vehicle.X)

	var nearest Threat
	found := false
	for _, obj := range state.Objects {
		if obj.Kind == EnergyPickup {
			continue
		}
		r := ObjectRect(obj)
		if !(vehicle.Left < r.Right && vehicle.Right > r.Left) {
			continue
		}
		gap := vehicle.Top - r.Bottom
		if gap < 0 {
			continue
		}
		if !found || gap < nearest.Gap {
			nearest = Threat{Object: obj, Gap: gap}
			found = true
		}
	}

	return nearest, found
}

// FramesUntil estimates how many frames remain before an object falls
// the given distance at the current speed
func FramesUntil(distance, speed float64) int {
	if speed <= 0 {
		return UnreachableFrames
	}
	frames := int(distance / speed)
	if float64(frames)*speed < distance {
		frames++
	}
	return frames
}

// UnreachableFrames marks a distance that is never covered
const UnreachableFrames = 999999

// AnalyzeEnergyRisk assesses how close the run is to ending
func AnalyzeEnergyRisk(state *RunState, p *Params) string {
	if state.Energy <= 0 {
		return "CRITICAL: Energy depleted!"
	}

	if p.EnergyCostPerHit > 0 && state.Energy <= p.EnergyCostPerHit {
		return "DANGER: One more hit ends the patrol!"
	}
	if state.Energy <= p.InitialEnergy/3 {
		return "LOW: Collect shields soon"
	}

	return "SAFE: Energy sufficient"
}
