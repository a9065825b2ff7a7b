package colony

import (
	"fmt"
	"math"
)

// TickReport summarizes one tick for the host
type TickReport struct {
	Tick         uint64
	Pickups      int
	Deliveries   int
	Delivered    int // Food units added to the nest this tick
	Deposits     int
	FieldUpdated bool
	Pruned       int
	Depleted     bool
}

// Tick advances the world by dt seconds
// dt is capped at MaxDeltaSeconds; agent speed is scaled so AgentSpeed is units per frame at ReferenceFPS
// Per agent: sense, steer, move, forage, deposit. Fields evaporate every FieldUpdateEvery ticks.
func (w *World) Tick(dt float64) (TickReport, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return TickReport{}, fmt.Errorf("%w: tick dt %v", ErrInvalidConfiguration, dt)
	}
	t := w.cfg.Tuning
	dt = math.Min(dt, t.MaxDeltaSeconds)

	w.ticks++
	w.clock += dt * 1000
	report := TickReport{Tick: w.ticks}

	speed := w.cfg.AgentSpeed * dt * t.ReferenceFPS
	noise := Noise(w.rng.Float64)

	for i := range w.agents {
		a := &w.agents[i]

		w.readings = w.senseInto(w.readings, a)
		heading := Steer(a, w.readings, w.cfg, w.clock, w.nest.Position, noise)
		a.Position, a.Heading = Move(a.Position, heading, speed, w.bounds, t.WallJitter, noise)
		a.Trail.Push(a.Position)

		carried := a.FoodAmount
		switch w.Forage(i) {
		case ForagePickup:
			report.Pickups++
		case ForageDelivery:
			report.Deliveries++
			report.Delivered += carried
		}

		report.Deposits += w.deposit(i)
	}

	if w.ticks%uint64(t.FieldUpdateEvery) == 0 {
		report.FieldUpdated = true
		for _, f := range w.fields {
			report.Pruned += f.Evaporate(w.cfg.EvaporationRate)
		}
	}

	report.Depleted = w.Depleted()
	return report, nil
}
