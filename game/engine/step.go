package engine

import (
	"fmt"
	"math"
)

// Step advances prev by one frame and returns the new state with a report
// of what happened. prev is not modified. Outside PhasePlaying the state
// is returned unchanged.
func Step(prev RunState, p *Params, rnd Rand, deltaMs float64, input Steer) (RunState, FrameReport) {
	if prev.Phase != PhasePlaying {
		return prev, FrameReport{Frame: prev.Frame}
	}

	state := prev
	report := FrameReport{Advanced: true}
	startEnergy := state.Energy

	// Pending input is consumed before anything moves
	steerVehicle(&state.Vehicle, p, input)

	// 1-2. Move and cull
	state.Objects, report.Culled = moveObjects(prev.Objects, p, state.Speed)

	// 3-4. Spawn on cadence
	state.Frame++
	report.Frame = state.Frame
	sp := newSpawner(p, rnd)
	if sp.obstacles.due(state.Frame) {
		obj := sp.obstacle(state.NextID)
		state.NextID++
		state.Objects = append(state.Objects, obj)
		report.Spawned = append(report.Spawned, obj.ID)
	}
	if sp.pickups.due(state.Frame) {
		obj := sp.pickup(state.NextID)
		state.NextID++
		state.Objects = append(state.Objects, obj)
		report.Spawned = append(report.Spawned, obj.ID)
	}

	// 5. Collisions. Removal is deferred so each object contributes at
	// most one delta.
	remove := make(map[uint64]bool)
	energyDelta := 0
	vehicle := VehicleRect(p, state.Vehicle.X)
	for _, obj := range state.Objects {
		if remove[obj.ID] || !vehicle.Overlaps(ObjectRect(obj)) {
			continue
		}

		var delta int
		switch obj.Kind {
		case EnergyPickup:
			delta = p.EnergyPerPickup
			state.Message = fmt.Sprintf("Shield collected! +%d energy", p.EnergyPerPickup)
		case CivilianCar, Cone:
			delta = -p.EnergyCostPerHit
			report.Hit = true
			state.Message = fmt.Sprintf("Hit a %s! -%d energy", kindLabel(obj.Kind), p.EnergyCostPerHit)
		default:
			continue
		}

		energyDelta += delta
		remove[obj.ID] = true
		report.Collisions = append(report.Collisions, Collision{
			ObjectID:    obj.ID,
			Kind:        obj.Kind,
			EnergyDelta: delta,
		})
	}
	if energyDelta != 0 {
		state.Energy = clampEnergy(state.Energy+energyDelta, p.InitialEnergy)
	}

	// 6. Real-time drain and score
	state.TimeAccumulatorMs += sanitizeDelta(deltaMs)
	for state.TimeAccumulatorMs >= TickIntervalMs {
		state.Energy = clampEnergy(state.Energy-p.EnergyDrainPerSecond, p.InitialEnergy)
		gained := int(math.Floor(state.Speed))
		state.Score += gained
		report.ScoreDelta += gained
		report.DrainTicks++
		state.TimeAccumulatorMs -= TickIntervalMs
	}

	// 7. Termination
	if state.Energy <= 0 {
		state.Energy = 0
		state.Phase = PhaseGameOver
		state.Message = fmt.Sprintf("Out of energy! Final score: %d", state.Score)
		report.GameOver = true
	}

	// 8. Difficulty ramp on a frame-count cadence
	ramp := cadence{every: p.SpeedRampFrames()}
	if ramp.due(state.Frame) {
		next := math.Min(p.MaxSpeed, state.Speed+p.SpeedIncreaseAmount)
		if next != state.Speed {
			state.Speed = next
			report.SpeedChanged = true
		}
	}

	// 9. Drop consumed objects
	if len(remove) > 0 {
		kept := make([]SpawnedObject, 0, len(state.Objects))
		for _, obj := range state.Objects {
			if !remove[obj.ID] {
				kept = append(kept, obj)
			}
		}
		state.Objects = kept
	}

	report.EnergyDelta = state.Energy - startEnergy
	return state, report
}

func kindLabel(kind ObjectKind) string {
	switch kind {
	case CivilianCar:
		return "civilian car"
	case Cone:
		return "traffic cone"
	case EnergyPickup:
		return "shield"
	}
	return string(kind)
}
