package colony

import (
	"fmt"
	"math"
)

// SimulationConfig is immutable for the duration of a run
// Changing it requires stopping the simulation and re-initializing
type SimulationConfig struct {
	AgentCount        int     `yaml:"agent_count" json:"agent_count"`
	FoodCount         int     `yaml:"food_count" json:"food_count"`
	EvaporationRate   float64 `yaml:"evaporation_rate" json:"evaporation_rate"`
	DiffusionRate     float64 `yaml:"diffusion_rate" json:"diffusion_rate"`
	AgentSpeed        float64 `yaml:"agent_speed" json:"agent_speed"`
	PheromoneStrength float64 `yaml:"pheromone_strength" json:"pheromone_strength"`
	SensorAngle       float64 `yaml:"sensor_angle" json:"sensor_angle"` // Degrees
	SensorDistance    float64 `yaml:"sensor_distance" json:"sensor_distance"`
	SensorCount       int     `yaml:"sensor_count" json:"sensor_count"` // 3 or 5

	Tuning Tuning `yaml:"tuning" json:"tuning"`
}

// Tuning holds blend weights and geometry constants
// None of these are load-bearing for correctness, only for how the colony looks
type Tuning struct {
	// Foraging geometry
	NestRadius    float64 `yaml:"nest_radius" json:"nest_radius"`
	PickupRadius  float64 `yaml:"pickup_radius" json:"pickup_radius"`
	PickupQuantum int     `yaml:"pickup_quantum" json:"pickup_quantum"`

	// Field
	LookupRadius     float64 `yaml:"lookup_radius" json:"lookup_radius"`
	MergeRadius      float64 `yaml:"merge_radius" json:"merge_radius"`
	MaxStrength      float64 `yaml:"max_strength" json:"max_strength"`
	Epsilon          float64 `yaml:"epsilon" json:"epsilon"`
	FieldUpdateEvery int     `yaml:"field_update_every" json:"field_update_every"`

	// Deposit
	DepositInterval float64 `yaml:"deposit_interval_ms" json:"deposit_interval_ms"`
	TraceFactor     float64 `yaml:"trace_factor" json:"trace_factor"`
	CarryBoost      float64 `yaml:"carry_boost" json:"carry_boost"`
	NestReinforce   float64 `yaml:"nest_reinforce" json:"nest_reinforce"`

	// Steering
	UrgencyWindow      float64 `yaml:"urgency_window_ms" json:"urgency_window_ms"`
	PheromoneWeightCap float64 `yaml:"pheromone_weight_cap" json:"pheromone_weight_cap"`
	SignalGain         float64 `yaml:"signal_gain" json:"signal_gain"`
	NestPull           float64 `yaml:"nest_pull" json:"nest_pull"`
	CarryExploreScale  float64 `yaml:"carry_explore_scale" json:"carry_explore_scale"`
	RandomWalkBase     float64 `yaml:"random_walk_base" json:"random_walk_base"`

	// Jitter amplitudes, radians peak-to-peak
	WallJitter   float64 `yaml:"wall_jitter" json:"wall_jitter"`
	PickupJitter float64 `yaml:"pickup_jitter" json:"pickup_jitter"`
	TurnJitter   float64 `yaml:"turn_jitter" json:"turn_jitter"`

	// Initialization
	FoodPlacementAttempts int     `yaml:"food_placement_attempts" json:"food_placement_attempts"`
	FoodAmountMin         int     `yaml:"food_amount_min" json:"food_amount_min"`
	FoodAmountSpread      int     `yaml:"food_amount_spread" json:"food_amount_spread"`
	SpawnRadiusMin        float64 `yaml:"spawn_radius_min" json:"spawn_radius_min"`
	SpawnRadiusSpread     float64 `yaml:"spawn_radius_spread" json:"spawn_radius_spread"`

	// Timestep
	MaxDeltaSeconds float64 `yaml:"max_delta_seconds" json:"max_delta_seconds"`
	ReferenceFPS    float64 `yaml:"reference_fps" json:"reference_fps"`

	TrailMemory int `yaml:"trail_memory" json:"trail_memory"`
}

// DefaultConfig returns the colony defaults
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		AgentCount:        80,
		FoodCount:         4,
		EvaporationRate:   0.005,
		DiffusionRate:     0.05,
		AgentSpeed:        2.5,
		PheromoneStrength: 2.5,
		SensorAngle:       45,
		SensorDistance:    25,
		SensorCount:       3,
		Tuning:            DefaultTuning(),
	}
}

// DefaultTuning returns the blend and geometry defaults
func DefaultTuning() Tuning {
	return Tuning{
		NestRadius:    15,
		PickupRadius:  5,
		PickupQuantum: 5,

		LookupRadius:     20,
		MergeRadius:      2,
		MaxStrength:      50,
		Epsilon:          0.01,
		FieldUpdateEvery: 3,

		DepositInterval: 80,
		TraceFactor:     0.2,
		CarryBoost:      1.5,
		NestReinforce:   2,

		UrgencyWindow:      10000,
		PheromoneWeightCap: 0.6,
		SignalGain:         1.5,
		NestPull:           0.8,
		CarryExploreScale:  0.25,
		RandomWalkBase:     0.15,

		WallJitter:   0.4,
		PickupJitter: 0.3,
		TurnJitter:   1.0,

		FoodPlacementAttempts: 50,
		FoodAmountMin:         80,
		FoodAmountSpread:      120,
		SpawnRadiusMin:        20,
		SpawnRadiusSpread:     30,

		MaxDeltaSeconds: 1.0 / 30,
		ReferenceFPS:    60,

		TrailMemory: 50,
	}
}

// Validate reports the first unusable value
// Non-positive agent and food counts are allowed and produce an empty population
func (c SimulationConfig) Validate() error {
	floats := []struct {
		name string
		v    float64
	}{
		{"evaporation_rate", c.EvaporationRate},
		{"diffusion_rate", c.DiffusionRate},
		{"agent_speed", c.AgentSpeed},
		{"pheromone_strength", c.PheromoneStrength},
		{"sensor_angle", c.SensorAngle},
		{"sensor_distance", c.SensorDistance},
	}
	for _, f := range floats {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfiguration, f.name)
		}
	}

	if c.EvaporationRate < 0 || c.EvaporationRate > 1 {
		return fmt.Errorf("%w: evaporation_rate %v outside [0,1]", ErrInvalidConfiguration, c.EvaporationRate)
	}
	if c.DiffusionRate < 0 || c.DiffusionRate > 1 {
		return fmt.Errorf("%w: diffusion_rate %v outside [0,1]", ErrInvalidConfiguration, c.DiffusionRate)
	}
	if c.AgentSpeed < 0 {
		return fmt.Errorf("%w: agent_speed %v is negative", ErrInvalidConfiguration, c.AgentSpeed)
	}
	if c.PheromoneStrength < 0 {
		return fmt.Errorf("%w: pheromone_strength %v is negative", ErrInvalidConfiguration, c.PheromoneStrength)
	}
	if c.SensorDistance < 0 {
		return fmt.Errorf("%w: sensor_distance %v is negative", ErrInvalidConfiguration, c.SensorDistance)
	}
	if c.SensorCount != 3 && c.SensorCount != 5 {
		return fmt.Errorf("%w: sensor_count must be 3 or 5, got %d", ErrInvalidConfiguration, c.SensorCount)
	}

	return c.Tuning.validate()
}

func (t Tuning) validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"nest_radius", t.NestRadius},
		{"pickup_radius", t.PickupRadius},
		{"lookup_radius", t.LookupRadius},
		{"max_strength", t.MaxStrength},
		{"epsilon", t.Epsilon},
		{"urgency_window_ms", t.UrgencyWindow},
		{"pheromone_weight_cap", t.PheromoneWeightCap},
		{"max_delta_seconds", t.MaxDeltaSeconds},
		{"reference_fps", t.ReferenceFPS},
	}
	for _, p := range positive {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return fmt.Errorf("%w: tuning.%s must be positive and finite, got %v", ErrInvalidConfiguration, p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"merge_radius", t.MergeRadius},
		{"deposit_interval_ms", t.DepositInterval},
		{"trace_factor", t.TraceFactor},
		{"carry_boost", t.CarryBoost},
		{"nest_reinforce", t.NestReinforce},
		{"signal_gain", t.SignalGain},
		{"nest_pull", t.NestPull},
		{"carry_explore_scale", t.CarryExploreScale},
		{"random_walk_base", t.RandomWalkBase},
		{"wall_jitter", t.WallJitter},
		{"pickup_jitter", t.PickupJitter},
		{"turn_jitter", t.TurnJitter},
		{"spawn_radius_min", t.SpawnRadiusMin},
		{"spawn_radius_spread", t.SpawnRadiusSpread},
	}
	for _, p := range nonNegative {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v < 0 {
			return fmt.Errorf("%w: tuning.%s must be non-negative and finite, got %v", ErrInvalidConfiguration, p.name, p.v)
		}
	}

	if t.PheromoneWeightCap > 1 {
		return fmt.Errorf("%w: tuning.pheromone_weight_cap %v exceeds 1", ErrInvalidConfiguration, t.PheromoneWeightCap)
	}
	if t.PickupQuantum <= 0 {
		return fmt.Errorf("%w: tuning.pickup_quantum must be positive, got %d", ErrInvalidConfiguration, t.PickupQuantum)
	}
	if t.FieldUpdateEvery <= 0 {
		return fmt.Errorf("%w: tuning.field_update_every must be positive, got %d", ErrInvalidConfiguration, t.FieldUpdateEvery)
	}
	if t.FoodPlacementAttempts < 0 || t.FoodAmountMin < 0 || t.FoodAmountSpread < 0 || t.TrailMemory < 0 {
		return fmt.Errorf("%w: tuning counts must be non-negative", ErrInvalidConfiguration)
	}
	if t.FoodAmountMin+t.FoodAmountSpread <= 0 {
		return fmt.Errorf("%w: tuning food amounts produce empty sources", ErrInvalidConfiguration)
	}

	return nil
}

// sensorAngleRad returns the configured sensor half-angle in radians
func (c SimulationConfig) sensorAngleRad() float64 {
	return c.SensorAngle * math.Pi / 180
}

// effectiveLookupRadius widens the field query radius by the diffusion rate
// Sparse deposits do not spread, the wider read stands in for diffusion
func (c SimulationConfig) effectiveLookupRadius() float64 {
	return c.Tuning.LookupRadius * (1 + c.DiffusionRate)
}
