package engine

import (
	"github.com/lixenwraith/antfarm/colony"
	"github.com/lixenwraith/antfarm/vmath"
)

// Point is a JSON-friendly world coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AgentView is the published state of one agent
type AgentView struct {
	ID       int     `json:"id"`
	Position Point   `json:"position"`
	Heading  float64 `json:"heading"`
	Carrying bool    `json:"carrying"`
	Amount   int     `json:"amount,omitempty"`
	Trail    []Point `json:"trail,omitempty"` // Recent positions, oldest first
}

// FoodView is the published state of one active food source
type FoodView struct {
	ID       int   `json:"id"`
	Position Point `json:"position"`
	Amount   int   `json:"amount"`
	Initial  int   `json:"initial"`
}

// DepositView is one pheromone deposit
type DepositView struct {
	Position Point   `json:"position"`
	Strength float64 `json:"strength"`
}

// Snapshot is an immutable copy of world state taken between ticks
// Renderers and the stream read snapshots only, never the world
type Snapshot struct {
	RunID  string  `json:"run_id,omitempty"`
	Phase  string  `json:"phase"`
	Tick   uint64  `json:"tick"`
	Clock  float64 `json:"clock_ms"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Nest   Point       `json:"nest"`
	Agents []AgentView `json:"agents"`
	Food   []FoodView  `json:"food"`

	Collected int  `json:"collected"`
	Remaining int  `json:"remaining"`
	Total     int  `json:"total"`
	Depleted  bool `json:"depleted"`
	Finished  bool `json:"finished"`

	// Deposit lists are truncated to the configured cap, the counts are not
	HomeDeposits     []DepositView `json:"home_deposits,omitempty"`
	FoodDeposits     []DepositView `json:"food_deposits,omitempty"`
	HomeDepositCount int           `json:"home_deposit_count"`
	FoodDepositCount int           `json:"food_deposit_count"`
}

// Returning counts agents carrying food
func (s *Snapshot) Returning() int {
	n := 0
	for i := range s.Agents {
		if s.Agents[i].Carrying {
			n++
		}
	}
	return n
}

func toPoint(v vmath.Vec2) Point {
	return Point{X: v.X, Y: v.Y}
}

// newSnapshot copies sim state; deposit lists hold at most maxDeposits entries per field
// and each agent carries its maxTrail most recent positions
func newSnapshot(runID string, sim *colony.Simulation, maxDeposits, maxTrail int) *Snapshot {
	bounds := sim.Bounds()
	snap := &Snapshot{
		RunID:  runID,
		Phase:  sim.Phase().String(),
		Width:  bounds.Width,
		Height: bounds.Height,
	}

	w := sim.World()
	if w == nil {
		return snap
	}

	snap.Tick = w.Ticks()
	snap.Clock = w.Clock()
	snap.Nest = toPoint(w.Nest().Position)
	snap.Collected = w.Collected()
	snap.Remaining = w.RemainingFood()
	snap.Total = w.TotalFood()
	snap.Depleted = w.Depleted()
	snap.Finished = finished(w)

	agents := w.Agents()
	snap.Agents = make([]AgentView, len(agents))
	for i, a := range agents {
		snap.Agents[i] = AgentView{
			ID:       a.ID,
			Position: toPoint(a.Position),
			Heading:  a.Heading,
			Carrying: a.CarryingFood,
			Amount:   a.FoodAmount,
		}
		if maxTrail > 0 {
			snap.Agents[i].Trail = trailPoints(a.Trail.Points(), maxTrail)
		}
	}

	food := w.FoodSources()
	snap.Food = make([]FoodView, len(food))
	for i, f := range food {
		snap.Food[i] = FoodView{
			ID:       f.ID,
			Position: toPoint(f.Position),
			Amount:   f.Amount,
			Initial:  f.Initial,
		}
	}

	snap.HomeDepositCount = w.DepositCount(colony.HomeField)
	snap.FoodDepositCount = w.DepositCount(colony.FoodField)
	if maxDeposits > 0 {
		snap.HomeDeposits = collectDeposits(w, colony.HomeField, maxDeposits)
		snap.FoodDeposits = collectDeposits(w, colony.FoodField, maxDeposits)
	}

	return snap
}

func trailPoints(pts []vmath.Vec2, limit int) []Point {
	pts = pts[max(0, len(pts)-limit):]
	if len(pts) == 0 {
		return nil
	}
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = toPoint(p)
	}
	return out
}

func collectDeposits(w *colony.World, kind colony.FieldKind, limit int) []DepositView {
	out := make([]DepositView, 0, min(limit, w.DepositCount(kind)))
	w.Deposits(kind, func(d colony.Deposit) {
		if len(out) < limit {
			out = append(out, DepositView{Position: toPoint(d.Position), Strength: d.Strength})
		}
	})
	return out
}

// finished reports that every unit of food has reached the nest
func finished(w *colony.World) bool {
	return w.Depleted() && w.Collected() == w.TotalFood()
}
