package colony

import (
	"fmt"
	"math"

	"github.com/lixenwraith/antfarm/vmath"
)

// Bounds is the world rectangle [0,Width) x [0,Height)
type Bounds struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Validate rejects zero, negative and non-finite extents
func (b Bounds) Validate() error {
	if math.IsNaN(b.Width) || math.IsNaN(b.Height) || math.IsInf(b.Width, 0) || math.IsInf(b.Height, 0) {
		return fmt.Errorf("%w: bounds %vx%v not finite", ErrInvalidConfiguration, b.Width, b.Height)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: bounds %vx%v must be positive", ErrInvalidConfiguration, b.Width, b.Height)
	}
	return nil
}

// Contains reports whether p lies inside the half-open world rectangle
func (b Bounds) Contains(p vmath.Vec2) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// Center returns the integer-floored midpoint
func (b Bounds) Center() vmath.Vec2 {
	return vmath.Vec2{X: math.Floor(b.Width / 2), Y: math.Floor(b.Height / 2)}
}

// clampInside pulls p into the half-open rectangle
func (b Bounds) clampInside(p vmath.Vec2) vmath.Vec2 {
	return vmath.Vec2{
		X: vmath.Clamp(p.X, 0, math.Nextafter(b.Width, 0)),
		Y: vmath.Clamp(p.Y, 0, math.Nextafter(b.Height, 0)),
	}
}

// ForageState is the per-agent foraging state machine
type ForageState uint8

const (
	Searching ForageState = iota
	Returning
)

func (s ForageState) String() string {
	switch s {
	case Searching:
		return "searching"
	case Returning:
		return "returning"
	default:
		return "unknown"
	}
}

// Agent is one forager
type Agent struct {
	ID              int
	Position        vmath.Vec2
	Heading         float64 // Radians
	CarryingFood    bool
	FoodAmount      int
	ExplorationBias float64 // [0,1], constant per agent
	LastDepositTime float64 // Engine clock ms
	LastFoodTime    float64 // Engine clock ms of last pickup
	Trail           Trail
}

// State derives the foraging state from the carry flag
func (a *Agent) State() ForageState {
	if a.CarryingFood {
		return Returning
	}
	return Searching
}

// FoodSource is a depletable pile, removed from the world once Amount reaches 0
type FoodSource struct {
	ID       int
	Position vmath.Vec2
	Amount   int
	Initial  int
}

// Nest is the fixed colony origin
type Nest struct {
	Position vmath.Vec2
}

// Trail is a fixed-capacity ring of recent agent positions
type Trail struct {
	points []vmath.Vec2
	head   int
	n      int
}

func newTrail(capacity int) Trail {
	if capacity <= 0 {
		return Trail{}
	}
	return Trail{points: make([]vmath.Vec2, capacity)}
}

// Push records a position, overwriting the oldest when full
func (t *Trail) Push(p vmath.Vec2) {
	if len(t.points) == 0 {
		return
	}
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
	if t.n < len(t.points) {
		t.n++
	}
}

// Len returns the number of recorded positions
func (t *Trail) Len() int {
	return t.n
}

// Points returns recorded positions oldest first, as a fresh slice
func (t *Trail) Points() []vmath.Vec2 {
	out := make([]vmath.Vec2, 0, t.n)
	start := (t.head - t.n + len(t.points)) % max(len(t.points), 1)
	for i := 0; i < t.n; i++ {
		out = append(out, t.points[(start+i)%len(t.points)])
	}
	return out
}
