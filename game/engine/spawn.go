package engine

import "fmt"

// Rand is the source of spawn draws. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// cadence fires on every n-th frame of a monotonic frame counter
type cadence struct {
	every int
}

func (c cadence) due(frame int) bool {
	return c.every > 0 && frame > 0 && frame%c.every == 0
}

// spawner creates objects with ids taken from the state's counter
type spawner struct {
	params    *Params
	rnd       Rand
	obstacles cadence
	pickups   cadence
}

func newSpawner(p *Params, rnd Rand) *spawner {
	return &spawner{
		params:    p,
		rnd:       rnd,
		obstacles: cadence{every: p.ObstacleSpawnRate},
		pickups:   cadence{every: p.EnergySpawnRate},
	}
}

// obstacle spawns a civilian car or a cone just above the visible field.
// Draw order: kind, x, then hue for cars.
func (s *spawner) obstacle(id uint64) SpawnedObject {
	p := s.params

	kind := CivilianCar
	if s.rnd.Float64() < p.ConeProbability {
		kind = Cone
	}

	width, height := p.ObstacleWidth, p.ObstacleHeight
	if kind == Cone {
		width *= p.ConeWidthScale
		height *= p.ConeHeightScale
	}

	obj := SpawnedObject{
		ID:     id,
		Kind:   kind,
		X:      s.spawnX(width),
		Y:      -height,
		Width:  width,
		Height: height,
	}

	if kind == CivilianCar {
		obj.Hue = s.rnd.Float64() * 360
		obj.Color = CarColor(obj.Hue, p.CarSaturation, p.CarLightness)
	}

	return obj
}

// pickup spawns an energy pickup two pickup-heights above the field
func (s *spawner) pickup(id uint64) SpawnedObject {
	size := s.params.PickupSize
	return SpawnedObject{
		ID:     id,
		Kind:   EnergyPickup,
		X:      s.spawnX(size),
		Y:      -size * 2,
		Width:  size,
		Height: size,
	}
}

// spawnX picks a centre so the whole object is inside the field
func (s *spawner) spawnX(width float64) float64 {
	return s.rnd.Float64()*(100-width) + width/2
}

// CarColor formats a civilian car colour as a CSS hsl() string
func CarColor(hue, saturation, lightness float64) string {
	return fmt.Sprintf("hsl(%.1f, %g%%, %g%%)", hue, saturation, lightness)
}
