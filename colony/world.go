package colony

import (
	"fmt"
	"math"

	"github.com/lixenwraith/antfarm/vmath"
)

// World holds the complete state of one run
// Not safe for concurrent use: exactly one caller may tick or read it at a time
type World struct {
	cfg    SimulationConfig
	bounds Bounds
	rng    *worldRand

	nest   Nest
	agents []Agent
	food   []FoodSource // Active set, every entry has Amount > 0
	fields [2]*Field

	collected int
	clock     float64 // Engine clock in ms, advanced by tick dt
	ticks     uint64

	placementFallbacks int

	// Sensor offsets relative to heading and scratch buffer reused by per-agent sensing
	offsets  []float64
	readings []SensorReading
}

// AgentSpec places a single agent in a Layout
type AgentSpec struct {
	Position        vmath.Vec2
	Heading         float64
	ExplorationBias float64
}

// FoodSpec places a single food source in a Layout
type FoodSpec struct {
	Position vmath.Vec2
	Amount   int
}

// Layout is an explicit starting arrangement
type Layout struct {
	Nest   vmath.Vec2
	Agents []AgentSpec
	Food   []FoodSpec
}

// Initialize builds a randomized world: nest at the centre, agents on a ring around it,
// food sources placed away from the nest by rejection sampling
func Initialize(bounds Bounds, cfg SimulationConfig, seed uint64) (*World, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := newWorldRand(seed)
	layout, fallbacks := randomLayout(bounds, cfg, rng)

	w := build(bounds, cfg, rng, layout)
	w.placementFallbacks = fallbacks
	return w, nil
}

// Build creates a world from an explicit layout
// Every position must lie inside bounds; food with non-positive amounts is skipped
func Build(bounds Bounds, cfg SimulationConfig, seed uint64, layout Layout) (*World, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !bounds.Contains(layout.Nest) {
		return nil, fmt.Errorf("%w: nest %v outside bounds", ErrInvalidConfiguration, layout.Nest)
	}
	for i, a := range layout.Agents {
		if !bounds.Contains(a.Position) {
			return nil, fmt.Errorf("%w: agent %d at %v outside bounds", ErrInvalidConfiguration, i, a.Position)
		}
		if math.IsNaN(a.Heading) || math.IsInf(a.Heading, 0) {
			return nil, fmt.Errorf("%w: agent %d heading not finite", ErrInvalidConfiguration, i)
		}
	}
	for i, f := range layout.Food {
		if !bounds.Contains(f.Position) {
			return nil, fmt.Errorf("%w: food %d at %v outside bounds", ErrInvalidConfiguration, i, f.Position)
		}
	}

	return build(bounds, cfg, newWorldRand(seed), layout), nil
}

func build(bounds Bounds, cfg SimulationConfig, rng *worldRand, layout Layout) *World {
	cellSize := cfg.effectiveLookupRadius()
	t := cfg.Tuning

	w := &World{
		cfg:    cfg,
		bounds: bounds,
		rng:    rng,
		nest:   Nest{Position: layout.Nest},
		agents: make([]Agent, 0, len(layout.Agents)),
		food:   make([]FoodSource, 0, len(layout.Food)),
		fields: [2]*Field{
			HomeField: NewField(HomeField, bounds, cellSize, t.MaxStrength, t.Epsilon, t.MergeRadius),
			FoodField: NewField(FoodField, bounds, cellSize, t.MaxStrength, t.Epsilon, t.MergeRadius),
		},
		offsets:  sensorOffsets(cfg.SensorCount, cfg.sensorAngleRad()),
		readings: make([]SensorReading, 0, cfg.SensorCount),
	}

	for i, spec := range layout.Agents {
		w.agents = append(w.agents, Agent{
			ID:              i,
			Position:        spec.Position,
			Heading:         vmath.WrapAngle(spec.Heading),
			ExplorationBias: vmath.Clamp(spec.ExplorationBias, 0, 1),
			Trail:           newTrail(t.TrailMemory),
		})
	}

	for i, spec := range layout.Food {
		if spec.Amount <= 0 {
			continue
		}
		w.food = append(w.food, FoodSource{
			ID:       i,
			Position: spec.Position,
			Amount:   spec.Amount,
			Initial:  spec.Amount,
		})
	}

	return w
}

// randomLayout generates the default arrangement
// Returns the layout and how many food sources fell back to unconstrained placement
func randomLayout(bounds Bounds, cfg SimulationConfig, rng *worldRand) (Layout, int) {
	t := cfg.Tuning
	nest := bounds.Center()
	layout := Layout{Nest: nest}

	agentCount := max(0, cfg.AgentCount)
	for i := 0; i < agentCount; i++ {
		angle := float64(i) / float64(agentCount) * 2 * math.Pi
		radius := rng.between(t.SpawnRadiusMin, t.SpawnRadiusMin+t.SpawnRadiusSpread)
		pos := bounds.clampInside(nest.Add(vmath.FromAngle(angle, radius)))
		layout.Agents = append(layout.Agents, AgentSpec{
			Position:        pos,
			Heading:         rng.angle(),
			ExplorationBias: rng.between(0.2, 0.8),
		})
	}

	minDist := math.Min(bounds.Width, bounds.Height) / 3
	fallbacks := 0
	foodCount := max(0, cfg.FoodCount)
	for i := 0; i < foodCount; i++ {
		pos, ok := placeFood(bounds, nest, minDist, t.FoodPlacementAttempts, rng)
		if !ok {
			// Attempt budget exhausted: accept an unconstrained position rather than dropping the source
			pos = vmath.Vec2{X: rng.between(0, bounds.Width), Y: rng.between(0, bounds.Height)}
			pos = bounds.clampInside(pos)
			fallbacks++
		}
		layout.Food = append(layout.Food, FoodSpec{
			Position: pos,
			Amount:   max(1, t.FoodAmountMin+rng.intN(t.FoodAmountSpread)),
		})
	}

	return layout, fallbacks
}

// placeFood samples corner-biased candidates until one lies at least minDist from the nest
func placeFood(bounds Bounds, nest vmath.Vec2, minDist float64, attempts int, rng *worldRand) (vmath.Vec2, bool) {
	const margin = 30
	w, h := bounds.Width, bounds.Height

	for range attempts {
		var p vmath.Vec2
		switch rng.intN(4) {
		case 0: // Top-left
			p = vmath.Vec2{X: margin + rng.Float64()*w*0.3, Y: margin + rng.Float64()*h*0.3}
		case 1: // Top-right
			p = vmath.Vec2{X: w*0.7 + rng.Float64()*(w*0.3-margin), Y: margin + rng.Float64()*h*0.3}
		case 2: // Bottom-left
			p = vmath.Vec2{X: margin + rng.Float64()*w*0.3, Y: h*0.7 + rng.Float64()*(h*0.3-margin)}
		default: // Bottom-right
			p = vmath.Vec2{X: w*0.7 + rng.Float64()*(w*0.3-margin), Y: h*0.7 + rng.Float64()*(h*0.3-margin)}
		}
		p = bounds.clampInside(p)
		if vmath.Dist(p, nest) >= minDist {
			return p, true
		}
	}
	return vmath.Vec2{}, false
}

// --- Read-only accessors ---

// Config returns the run configuration
func (w *World) Config() SimulationConfig {
	return w.cfg
}

// Bounds returns the world rectangle
func (w *World) Bounds() Bounds {
	return w.bounds
}

// Nest returns the nest
func (w *World) Nest() Nest {
	return w.nest
}

// Agents returns a copy of the agent list
// Trail buffers are shared with the world and valid until the next tick
func (w *World) Agents() []Agent {
	out := make([]Agent, len(w.agents))
	copy(out, w.agents)
	return out
}

// AgentCount returns the population size
func (w *World) AgentCount() int {
	return len(w.agents)
}

// FoodSources returns a copy of the active food set
func (w *World) FoodSources() []FoodSource {
	out := make([]FoodSource, len(w.food))
	copy(out, w.food)
	return out
}

// Collected returns the total food delivered to the nest
func (w *World) Collected() int {
	return w.collected
}

// Depleted reports whether no food source remains
func (w *World) Depleted() bool {
	return len(w.food) == 0
}

// TotalFood returns food in sources + food carried + food collected
// Constant for the whole run
func (w *World) TotalFood() int {
	total := w.collected
	for i := range w.food {
		total += w.food[i].Amount
	}
	for i := range w.agents {
		total += w.agents[i].FoodAmount
	}
	return total
}

// RemainingFood returns the amount still in sources
func (w *World) RemainingFood() int {
	total := 0
	for i := range w.food {
		total += w.food[i].Amount
	}
	return total
}

// Deposits visits every live deposit of one field
func (w *World) Deposits(kind FieldKind, fn func(Deposit)) {
	if f := w.field(kind); f != nil {
		f.Each(fn)
	}
}

// DepositCount returns the number of live deposits in one field
func (w *World) DepositCount(kind FieldKind) int {
	if f := w.field(kind); f != nil {
		return f.Len()
	}
	return 0
}

// FieldTotal returns the summed strength of one field
func (w *World) FieldTotal(kind FieldKind) float64 {
	if f := w.field(kind); f != nil {
		return f.Total()
	}
	return 0
}

// Clock returns the engine clock in milliseconds
func (w *World) Clock() float64 {
	return w.clock
}

// Ticks returns the number of completed ticks
func (w *World) Ticks() uint64 {
	return w.ticks
}

// PlacementFallbacks returns how many food sources ignored the nest distance constraint
func (w *World) PlacementFallbacks() int {
	return w.placementFallbacks
}

func (w *World) field(kind FieldKind) *Field {
	if int(kind) >= len(w.fields) {
		return nil
	}
	return w.fields[kind]
}
