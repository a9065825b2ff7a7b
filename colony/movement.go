package colony

import (
	"math"

	"github.com/lixenwraith/antfarm/vmath"
)

// Move steps speed units along heading and reflects off the world edges
// Horizontal crossings mirror heading to π-h, vertical crossings to -h, and the position
// is clamped inside [0,w)x[0,h). Reflected headings get a small jitter so agents do not
// settle into a repeating wall cycle. Returns the new position and heading.
func Move(pos vmath.Vec2, heading, speed float64, bounds Bounds, jitter float64, noise Noise) (vmath.Vec2, float64) {
	next := pos.Add(vmath.FromAngle(heading, speed))
	if !next.IsFinite() {
		next = pos
	}

	reflected := false
	maxX := math.Nextafter(bounds.Width, 0)
	maxY := math.Nextafter(bounds.Height, 0)

	if next.X < 0 || next.X > maxX {
		heading = math.Pi - heading
		next.X = vmath.Clamp(next.X, 0, maxX)
		reflected = true
	}
	if next.Y < 0 || next.Y > maxY {
		heading = -heading
		next.Y = vmath.Clamp(next.Y, 0, maxY)
		reflected = true
	}

	if reflected && jitter > 0 && noise != nil {
		heading += (noise() - 0.5) * jitter
	}

	return next, vmath.WrapAngle(heading)
}
