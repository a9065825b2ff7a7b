package colony

import (
	"github.com/lixenwraith/antfarm/vmath"
)

// SensorReading is one probe ahead of an agent
type SensorReading struct {
	Point vmath.Vec2
	Angle float64 // Absolute heading of the probe
	Home  float64
	Food  float64
}

// signal returns the reading relevant to the given state
func (r SensorReading) signal(state ForageState) float64 {
	if state == Returning {
		return r.Home
	}
	return r.Food
}

// sensorOffsets returns angular offsets relative to heading
// 3 sensors: 0, ±a; 5 sensors add ±1.5a
func sensorOffsets(count int, angle float64) []float64 {
	if count == 5 {
		return []float64{-1.5 * angle, -angle, 0, angle, 1.5 * angle}
	}
	return []float64{-angle, 0, angle}
}

// Sense samples both pheromone fields at the agent's sensor points
// Pure: reads world state only
func Sense(w *World, a *Agent) []SensorReading {
	return w.senseInto(make([]SensorReading, 0, w.cfg.SensorCount), a)
}

func (w *World) senseInto(buf []SensorReading, a *Agent) []SensorReading {
	buf = buf[:0]
	radius := w.cfg.effectiveLookupRadius()
	home := w.fields[HomeField]
	food := w.fields[FoodField]

	for _, off := range w.offsets {
		angle := a.Heading + off
		p := a.Position.Add(vmath.FromAngle(angle, w.cfg.SensorDistance))
		buf = append(buf, SensorReading{
			Point: p,
			Angle: angle,
			Home:  home.Strength(p, radius),
			Food:  food.Strength(p, radius),
		})
	}
	return buf
}
