package colony

import (
	"math"

	"github.com/lixenwraith/antfarm/vmath"
)

// Noise is a uniform [0,1) source injected into steering and movement
type Noise func() float64

// explorationUrgency rises linearly from 0 at the last pickup to 1 after window ms
func explorationUrgency(elapsed, window float64) float64 {
	if elapsed <= 0 || window <= 0 {
		return 0
	}
	return math.Min(1, elapsed/window)
}

// Steer computes a new heading from sensor readings without mutating the agent
//
// Four directions are blended around the current heading: the strongest sensor for the
// followed field, a random exploration angle, a random-walk angle and, when carrying,
// the bearing to the nest. Weights are normalized when they sum past 1 so the result
// stays a convex combination with the old heading taking any remaining weight.
func Steer(a *Agent, readings []SensorReading, cfg SimulationConfig, now float64, nest vmath.Vec2, noise Noise) float64 {
	t := cfg.Tuning
	state := a.State()

	target := a.Heading
	maxSignal := 0.0
	for _, r := range readings {
		if s := r.signal(state); s > maxSignal {
			maxSignal = s
			target = r.Angle
		}
	}

	urgency := explorationUrgency(now-a.LastFoodTime, t.UrgencyWindow)

	pheromoneW := math.Min(t.PheromoneWeightCap, maxSignal*t.SignalGain)
	exploreW := (a.ExplorationBias + 0.5*urgency) * math.Max(0, 1.2-0.5*maxSignal)
	walkW := t.RandomWalkBase + 0.1*urgency
	nestW := 0.0
	if state == Returning {
		// Nest bearing takes over as the pheromone signal fades
		nestW = t.NestPull * (1 - pheromoneW/t.PheromoneWeightCap)
		exploreW *= t.CarryExploreScale
	}

	if sum := pheromoneW + exploreW + walkW + nestW; sum > 1 {
		pheromoneW /= sum
		exploreW /= sum
		walkW /= sum
		nestW /= sum
	}

	explore := (noise() - 0.5) * math.Pi
	walk := (noise() - 0.5) * math.Pi * (0.3 + 0.4*urgency)

	delta := pheromoneW*vmath.AngleDiff(a.Heading, target) +
		exploreW*explore +
		walkW*walk
	if nestW > 0 {
		delta += nestW * vmath.AngleDiff(a.Heading, vmath.Bearing(a.Position, nest))
	}

	return vmath.WrapAngle(a.Heading + delta)
}
