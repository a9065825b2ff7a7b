package render

import (
	"github.com/gdamore/tcell/v2"
)

// Palette for the colony view
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbNest       = tcell.NewRGBColor(205, 133, 63)  // Peru brown
	RgbAntSearch  = tcell.NewRGBColor(220, 220, 220) // Light gray
	RgbAntReturn  = tcell.NewRGBColor(255, 200, 0)   // Amber, carrying food
	RgbAntTrail   = tcell.NewRGBColor(90, 90, 110)   // Dim slate
	RgbFoodFull   = tcell.NewRGBColor(50, 255, 50)   // Bright green
	RgbFoodLow    = tcell.NewRGBColor(0, 120, 0)     // Dark green

	// Pheromone tints blended over the background
	RgbHomeTrail = tcell.NewRGBColor(60, 100, 200) // Blue
	RgbFoodTrail = tcell.NewRGBColor(0, 200, 100)  // Teal green

	// Status bar
	RgbStatusText    = tcell.NewRGBColor(0, 0, 0)
	RgbRunningBg     = tcell.NewRGBColor(144, 238, 144) // Light grass green
	RgbPausedBg      = tcell.NewRGBColor(255, 165, 0)   // Orange
	RgbStoppedBg     = tcell.NewRGBColor(200, 50, 50)   // Red
	RgbStatusBarText = tcell.NewRGBColor(255, 255, 255)
)

// lerpColor mixes a toward b by t in [0,1]
func lerpColor(a, b tcell.Color, t float64) tcell.Color {
	t = min(1, max(0, t))
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	mix := func(x, y int32) int32 {
		return x + int32(float64(y-x)*t)
	}
	return tcell.NewRGBColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// phaseColor is the status badge background for a phase name
func phaseColor(phase string) tcell.Color {
	switch phase {
	case "running":
		return RgbRunningBg
	case "paused":
		return RgbPausedBg
	default:
		return RgbStoppedBg
	}
}
