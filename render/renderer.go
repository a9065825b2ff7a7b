package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/antfarm/engine"
)

// Glyphs
const (
	GlyphNest      = '⌂'
	GlyphAntSearch = '•'
	GlyphAntReturn = 'o'
	GlyphAntTrail  = '·'
	GlyphTrail     = ' '
)

// Renderer draws snapshots onto a tcell screen
// The bottom row is the status bar; the rest maps the world rectangle onto terminal cells
type Renderer struct {
	screen         tcell.Screen
	showPheromones bool

	// Per-cell pheromone sums reused across frames
	home []float64
	food []float64
}

// NewRenderer creates a renderer on an initialized screen
func NewRenderer(screen tcell.Screen, showPheromones bool) *Renderer {
	return &Renderer{
		screen:         screen,
		showPheromones: showPheromones,
	}
}

// TogglePheromones flips pheromone shading and returns the new state
func (r *Renderer) TogglePheromones() bool {
	r.showPheromones = !r.showPheromones
	return r.showPheromones
}

// ShowPheromones reports whether pheromone shading is on
func (r *Renderer) ShowPheromones() bool {
	return r.showPheromones
}

// WorldSize converts a terminal size to world extents, reserving the status row
func WorldSize(cols, rows int, cellWidth, cellHeight float64) (float64, float64) {
	return float64(max(1, cols)) * cellWidth, float64(max(1, rows-1)) * cellHeight
}

// Draw renders one frame and shows it
func (r *Renderer) Draw(snap *engine.Snapshot) {
	cols, rows := r.screen.Size()
	r.screen.SetStyle(tcell.StyleDefault.Background(RgbBackground))
	r.screen.Clear()
	if snap == nil || cols <= 0 || rows <= 0 {
		r.screen.Show()
		return
	}

	fieldRows := rows - 1
	if fieldRows > 0 && snap.Width > 0 && snap.Height > 0 {
		v := viewport{cols: cols, rows: fieldRows, width: snap.Width, height: snap.Height}
		if r.showPheromones {
			r.drawPheromones(snap, v)
		}
		r.drawNest(snap, v)
		r.drawFood(snap, v)
		r.drawAgents(snap, v)
	}
	r.drawStatus(snap, cols, rows-1)

	r.screen.Show()
}

// viewport maps world coordinates to field cells
type viewport struct {
	cols, rows    int
	width, height float64
}

func (v viewport) cell(p engine.Point) (int, int, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= v.width || p.Y >= v.height {
		return 0, 0, false
	}
	x := min(v.cols-1, int(p.X/v.width*float64(v.cols)))
	y := min(v.rows-1, int(p.Y/v.height*float64(v.rows)))
	return x, y, true
}

func (r *Renderer) drawPheromones(snap *engine.Snapshot, v viewport) {
	n := v.cols * v.rows
	if cap(r.home) < n {
		r.home = make([]float64, n)
		r.food = make([]float64, n)
	}
	r.home = r.home[:n]
	r.food = r.food[:n]
	clear(r.home)
	clear(r.food)

	accumulate := func(dst []float64, deposits []engine.DepositView) float64 {
		peak := 0.0
		for _, d := range deposits {
			x, y, ok := v.cell(d.Position)
			if !ok {
				continue
			}
			i := y*v.cols + x
			dst[i] += d.Strength
			peak = math.Max(peak, dst[i])
		}
		return peak
	}
	homePeak := accumulate(r.home, snap.HomeDeposits)
	foodPeak := accumulate(r.food, snap.FoodDeposits)
	if homePeak == 0 && foodPeak == 0 {
		return
	}

	for i := range n {
		h, f := normalize(r.home[i], homePeak), normalize(r.food[i], foodPeak)
		if h == 0 && f == 0 {
			continue
		}
		bg := RgbBackground
		if h >= f {
			bg = lerpColor(bg, RgbHomeTrail, h)
		} else {
			bg = lerpColor(bg, RgbFoodTrail, f)
		}
		r.screen.SetContent(i%v.cols, i/v.cols, GlyphTrail, nil, tcell.StyleDefault.Background(bg))
	}
}

// normalize maps a cell sum to [0,1] on a square-root curve so faint trails stay visible
func normalize(v, peak float64) float64 {
	if v <= 0 || peak <= 0 {
		return 0
	}
	return math.Sqrt(v / peak)
}

func (r *Renderer) drawNest(snap *engine.Snapshot, v viewport) {
	if x, y, ok := v.cell(snap.Nest); ok {
		r.setFg(x, y, GlyphNest, RgbNest)
	}
}

func (r *Renderer) drawFood(snap *engine.Snapshot, v viewport) {
	for _, f := range snap.Food {
		x, y, ok := v.cell(f.Position)
		if !ok {
			continue
		}
		r.setFg(x, y, foodGlyph(f.Amount, f.Initial), lerpColor(RgbFoodLow, RgbFoodFull, float64(f.Amount)/float64(max(1, f.Initial))))
	}
}

// foodGlyph shows the remaining fraction of a source as a digit 1-9
func foodGlyph(amount, initial int) rune {
	if initial <= 0 || amount <= 0 {
		return '0'
	}
	level := int(math.Ceil(9 * float64(amount) / float64(initial)))
	return rune('0' + min(9, max(1, level)))
}

func (r *Renderer) drawAgents(snap *engine.Snapshot, v viewport) {
	// Trails first so ants sharing a cell stay visible
	for _, a := range snap.Agents {
		for _, p := range a.Trail {
			if x, y, ok := v.cell(p); ok {
				r.setFg(x, y, GlyphAntTrail, RgbAntTrail)
			}
		}
	}
	for _, a := range snap.Agents {
		x, y, ok := v.cell(a.Position)
		if !ok {
			continue
		}
		if a.Carrying {
			r.setFg(x, y, GlyphAntReturn, RgbAntReturn)
		} else {
			r.setFg(x, y, GlyphAntSearch, RgbAntSearch)
		}
	}
}

// setFg draws glyph keeping whatever background the cell already has
func (r *Renderer) setFg(x, y int, glyph rune, fg tcell.Color) {
	_, _, style, _ := r.screen.GetContent(x, y)
	r.screen.SetContent(x, y, glyph, nil, style.Foreground(fg))
}

// StatusLine formats the status bar text for snap
func StatusLine(snap *engine.Snapshot) string {
	return fmt.Sprintf(" tick %d | collected %d/%d | remaining %d | ants %d (%d carrying) | trails %d/%d | [space] pause [r] reset [p] pheromones [q] quit",
		snap.Tick, snap.Collected, snap.Total, snap.Remaining,
		len(snap.Agents), snap.Returning(),
		snap.HomeDepositCount, snap.FoodDepositCount)
}

func (r *Renderer) drawStatus(snap *engine.Snapshot, cols, row int) {
	badge := " " + strings.ToUpper(snap.Phase) + " "
	switch {
	case snap.Finished:
		badge = " DONE "
	case snap.Depleted && snap.Phase == "paused":
		badge = " DEPLETED "
	}
	x := r.drawText(0, row, cols, badge, tcell.StyleDefault.Foreground(RgbStatusText).Background(phaseColor(snap.Phase)).Bold(true))
	r.drawText(x, row, cols, StatusLine(snap), tcell.StyleDefault.Foreground(RgbStatusBarText).Background(RgbBackground))
}

// drawText writes s from column x, clipped at cols, and returns the next column
func (r *Renderer) drawText(x, y, cols int, s string, style tcell.Style) int {
	for _, ch := range s {
		if x >= cols {
			break
		}
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}
