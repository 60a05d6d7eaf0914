package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Params holds every tunable constant of the simulation. The values are
// fixed for the lifetime of an engine.
type Params struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	FieldWidth  float64 `json:"field_width"`
	FieldHeight float64 `json:"field_height"`

	// Widths are percentages of the field width, heights are pixels
	VehicleWidth        float64 `json:"vehicle_width"`
	VehicleHeight       float64 `json:"vehicle_height"`
	VehicleBottomMargin float64 `json:"vehicle_bottom_margin"`
	ObstacleWidth       float64 `json:"obstacle_width"`
	ObstacleHeight      float64 `json:"obstacle_height"`
	ConeWidthScale      float64 `json:"cone_width_scale"`
	ConeHeightScale     float64 `json:"cone_height_scale"`
	ConeProbability     float64 `json:"cone_probability"`
	PickupSize          float64 `json:"pickup_size"`
	CullMargin          float64 `json:"cull_margin"`

	InitialEnergy        int `json:"initial_energy"`
	EnergyPerPickup      int `json:"energy_per_pickup"`
	EnergyCostPerHit     int `json:"energy_cost_per_hit"`
	EnergyDrainPerSecond int `json:"energy_drain_per_second"`

	InitialSpeed            float64 `json:"initial_speed"`
	MaxSpeed                float64 `json:"max_speed"`
	SpeedIncreaseIntervalMs float64 `json:"speed_increase_interval_ms"`
	SpeedIncreaseAmount     float64 `json:"speed_increase_amount"`
	NominalFrameMs          float64 `json:"nominal_frame_ms"`

	MoveStep float64 `json:"move_step"`

	ObstacleSpawnRate int `json:"obstacle_spawn_rate"`
	EnergySpawnRate   int `json:"energy_spawn_rate"`

	CarSaturation float64 `json:"car_saturation"`
	CarLightness  float64 `json:"car_lightness"`

	// Presentation timers, not read by the simulation
	HitFlashMs float64 `json:"hit_flash_ms"`
	ShakeMs    float64 `json:"shake_ms"`
}

// DefaultParams returns the classic parameter set
func DefaultParams() *Params {
	return &Params{
		Name:        "classic",
		Description: "Patrulla Urbana: dodge traffic and collect MUPOL shields",

		FieldWidth:  400,
		FieldHeight: 700,

		VehicleWidth:        12.5,
		VehicleHeight:       60,
		VehicleBottomMargin: 20,
		ObstacleWidth:       15,
		ObstacleHeight:      30,
		ConeWidthScale:      0.6,
		ConeHeightScale:     0.7,
		ConeProbability:     0.3,
		PickupSize:          7.5,
		CullMargin:          50,

		InitialEnergy:        100,
		EnergyPerPickup:      15,
		EnergyCostPerHit:     30,
		EnergyDrainPerSecond: 2,

		InitialSpeed:            4,
		MaxSpeed:                12,
		SpeedIncreaseIntervalMs: 5000,
		SpeedIncreaseAmount:     0.5,
		NominalFrameMs:          1000.0 / 60.0,

		MoveStep: 3,

		ObstacleSpawnRate: 70,
		EnergySpawnRate:   150,

		CarSaturation: 20,
		CarLightness:  60,

		HitFlashMs: 300,
		ShakeMs:    200,
	}
}

// SpeedRampFrames is the number of advance calls between speed increases.
// It assumes a nominal frame duration instead of measuring elapsed time.
func (p *Params) SpeedRampFrames() int {
	return int(math.Round(p.SpeedIncreaseIntervalMs / p.NominalFrameMs))
}

// MinVehicleX is the leftmost allowed vehicle centre
func (p *Params) MinVehicleX() float64 {
	return p.VehicleWidth / 2
}

// MaxVehicleX is the rightmost allowed vehicle centre
func (p *Params) MaxVehicleX() float64 {
	return 100 - p.VehicleWidth/2
}

// ValidateParams checks a parameter set for consistency
func ValidateParams(p *Params) error {
	if p == nil {
		return fmt.Errorf("params validation: params cannot be nil")
	}
	if p.Name == "" {
		return fmt.Errorf("params validation: name is required")
	}

	if p.FieldWidth <= 0 || p.FieldHeight <= 0 {
		return fmt.Errorf("params validation: field dimensions must be positive, got %vx%v", p.FieldWidth, p.FieldHeight)
	}

	for name, pct := range map[string]float64{
		"vehicle_width":  p.VehicleWidth,
		"obstacle_width": p.ObstacleWidth,
		"pickup_size":    p.PickupSize,
	} {
		if pct <= 0 || pct >= 100 {
			return fmt.Errorf("params validation: %s must be between 0 and 100 (exclusive), got %v", name, pct)
		}
	}
	if p.VehicleHeight <= 0 || p.ObstacleHeight <= 0 {
		return fmt.Errorf("params validation: vehicle_height and obstacle_height must be positive")
	}
	if p.VehicleHeight+p.VehicleBottomMargin > p.FieldHeight {
		return fmt.Errorf("params validation: vehicle does not fit in field height %v", p.FieldHeight)
	}
	if p.VehicleBottomMargin < 0 || p.CullMargin < 0 {
		return fmt.Errorf("params validation: margins cannot be negative")
	}
	if p.ConeWidthScale <= 0 || p.ConeWidthScale > 1 || p.ConeHeightScale <= 0 || p.ConeHeightScale > 1 {
		return fmt.Errorf("params validation: cone scales must be in (0, 1]")
	}
	if p.ConeProbability < 0 || p.ConeProbability > 1 {
		return fmt.Errorf("params validation: cone_probability must be in [0, 1], got %v", p.ConeProbability)
	}

	if p.InitialEnergy <= 0 {
		return fmt.Errorf("params validation: initial_energy must be positive, got %d", p.InitialEnergy)
	}
	if p.EnergyPerPickup < 0 || p.EnergyCostPerHit < 0 || p.EnergyDrainPerSecond < 0 {
		return fmt.Errorf("params validation: energy deltas cannot be negative")
	}

	if p.InitialSpeed <= 0 {
		return fmt.Errorf("params validation: initial_speed must be positive, got %v", p.InitialSpeed)
	}
	if p.MaxSpeed < p.InitialSpeed {
		return fmt.Errorf("params validation: max_speed (%v) must be >= initial_speed (%v)", p.MaxSpeed, p.InitialSpeed)
	}
	if p.SpeedIncreaseAmount < 0 {
		return fmt.Errorf("params validation: speed_increase_amount cannot be negative")
	}
	if p.NominalFrameMs <= 0 || p.SpeedIncreaseIntervalMs <= 0 {
		return fmt.Errorf("params validation: speed_increase_interval_ms and nominal_frame_ms must be positive")
	}
	if p.SpeedRampFrames() < 1 {
		return fmt.Errorf("params validation: speed ramp interval is shorter than one frame")
	}

	if p.MoveStep <= 0 {
		return fmt.Errorf("params validation: move_step must be positive, got %v", p.MoveStep)
	}
	if p.ObstacleSpawnRate < 1 || p.EnergySpawnRate < 1 {
		return fmt.Errorf("params validation: spawn rates must be at least 1 frame, got %d/%d", p.ObstacleSpawnRate, p.EnergySpawnRate)
	}

	if p.HitFlashMs < 0 || p.ShakeMs < 0 {
		return fmt.Errorf("params validation: effect durations cannot be negative")
	}

	return nil
}

// LoadParams loads a parameter file. Fields missing from the file keep
// their classic defaults.
func LoadParams(filename string) (*Params, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseParams(data)
}

// ParseParams decodes JSON over the defaults and validates the result
func ParseParams(data []byte) (*Params, error) {
	params := DefaultParams()
	if err := json.Unmarshal(data, params); err != nil {
		return nil, err
	}
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	return params, nil
}
