package colony

import (
	"math"
	"slices"

	"github.com/lixenwraith/antfarm/vmath"
)

// ForageEvent is the outcome of a foraging check
type ForageEvent uint8

const (
	ForageNone ForageEvent = iota
	ForagePickup
	ForageDelivery
)

func (e ForageEvent) String() string {
	switch e {
	case ForagePickup:
		return "pickup"
	case ForageDelivery:
		return "delivery"
	default:
		return "none"
	}
}

// Forage runs the Searching/Returning transition for agent i at its current position
// At most one transition happens per call
func (w *World) Forage(i int) ForageEvent {
	if i < 0 || i >= len(w.agents) {
		return ForageNone
	}
	a := &w.agents[i]
	t := w.cfg.Tuning

	if !a.CarryingFood {
		pickupSq := t.PickupRadius * t.PickupRadius
		for fi := range w.food {
			src := &w.food[fi]
			if src.Amount <= 0 || vmath.DistSq(a.Position, src.Position) > pickupSq {
				continue
			}

			taken := min(t.PickupQuantum, src.Amount)
			src.Amount -= taken
			if src.Amount <= 0 {
				w.food = slices.Delete(w.food, fi, fi+1)
			}

			a.CarryingFood = true
			a.FoodAmount = taken
			a.LastFoodTime = w.clock
			a.Heading = vmath.WrapAngle(vmath.Bearing(a.Position, w.nest.Position) + w.rng.centered(t.PickupJitter))
			return ForagePickup
		}
		return ForageNone
	}

	nestSq := t.NestRadius * t.NestRadius
	if vmath.DistSq(a.Position, w.nest.Position) > nestSq {
		return ForageNone
	}

	w.collected += a.FoodAmount
	a.CarryingFood = false
	a.FoodAmount = 0
	a.Heading = vmath.WrapAngle(a.Heading + math.Pi + w.rng.centered(t.TurnJitter))
	w.fields[HomeField].Deposit(w.nest.Position, w.cfg.PheromoneStrength*t.NestReinforce)
	return ForageDelivery
}

// deposit lays pheromone for agent i, throttled to one deposit per DepositInterval
// Returns the number of field writes that landed in bounds
func (w *World) deposit(i int) int {
	a := &w.agents[i]
	t := w.cfg.Tuning
	if w.clock-a.LastDepositTime <= t.DepositInterval {
		return 0
	}
	a.LastDepositTime = w.clock

	strength := w.cfg.PheromoneStrength
	primary, trace := FoodField, HomeField
	if a.CarryingFood {
		primary, trace = HomeField, FoodField
		strength *= t.CarryBoost * float64(a.FoodAmount) / float64(t.PickupQuantum)
	}

	n := 0
	if w.fields[primary].Deposit(a.Position, strength) {
		n++
	}
	if w.fields[trace].Deposit(a.Position, strength*t.TraceFactor) {
		n++
	}
	return n
}
