package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/antfarm/engine"
)

func newScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return s
}

// testSnapshot is a 400x100 world, drawn on a 40x11 screen each cell covers 10x10 units
func testSnapshot() *engine.Snapshot {
	return &engine.Snapshot{
		Phase:  "running",
		Tick:   42,
		Width:  400,
		Height: 100,
		Nest:   engine.Point{X: 200, Y: 50},
		Agents: []engine.AgentView{
			{ID: 0, Position: engine.Point{X: 5, Y: 5}},
			{ID: 1, Position: engine.Point{X: 395, Y: 95}, Carrying: true, Amount: 5},
		},
		Food: []engine.FoodView{
			{ID: 0, Position: engine.Point{X: 100, Y: 20}, Amount: 50, Initial: 100},
		},
		Collected: 5,
		Remaining: 50,
		Total:     60,
		HomeDeposits: []engine.DepositView{
			{Position: engine.Point{X: 200, Y: 80}, Strength: 5},
		},
		HomeDepositCount: 1,
	}
}

func rowText(s tcell.SimulationScreen, row int) string {
	cols, _ := s.Size()
	var b strings.Builder
	for x := range cols {
		r, _, _, _ := s.GetContent(x, row)
		b.WriteRune(r)
	}
	return b.String()
}

func TestDrawPlacesEntities(t *testing.T) {
	s := newScreen(t, 40, 11)
	r := NewRenderer(s, false)
	r.Draw(testSnapshot())

	glyph := func(x, y int) rune {
		ch, _, _, _ := s.GetContent(x, y)
		return ch
	}
	assert.Equal(t, GlyphNest, glyph(20, 5))
	assert.Equal(t, GlyphAntSearch, glyph(0, 0))
	assert.Equal(t, GlyphAntReturn, glyph(39, 9))
	assert.Equal(t, '5', glyph(10, 2))

	_, _, style, _ := s.GetContent(39, 9)
	fg, _, _ := style.Decompose()
	assert.Equal(t, RgbAntReturn, fg)
}

func TestDrawStatusBar(t *testing.T) {
	s := newScreen(t, 120, 11)
	r := NewRenderer(s, false)
	r.Draw(testSnapshot())

	status := rowText(s, 10)
	assert.True(t, strings.HasPrefix(status, " RUNNING "))
	assert.Contains(t, status, "tick 42")
	assert.Contains(t, status, "collected 5/60")
	assert.Contains(t, status, "ants 2 (1 carrying)")

	snap := testSnapshot()
	snap.Phase = "paused"
	snap.Depleted = true
	r.Draw(snap)
	assert.True(t, strings.HasPrefix(rowText(s, 10), " DEPLETED "))

	snap.Finished = true
	r.Draw(snap)
	assert.True(t, strings.HasPrefix(rowText(s, 10), " DONE "))
}

func TestDrawAgentTrails(t *testing.T) {
	s := newScreen(t, 40, 11)
	r := NewRenderer(s, false)

	snap := testSnapshot()
	snap.Agents[0].Trail = []engine.Point{{X: -3, Y: 5}, {X: 25, Y: 5}, {X: 15, Y: 5}, {X: 5, Y: 5}}
	r.Draw(snap)

	row := []rune(rowText(s, 0))
	assert.Equal(t, GlyphAntSearch, row[0], "ant drawn over its own trail")
	assert.Equal(t, GlyphAntTrail, row[1])
	assert.Equal(t, GlyphAntTrail, row[2])
	assert.NotEqual(t, GlyphAntTrail, row[3])

	_, _, style, _ := s.GetContent(2, 0)
	fg, _, _ := style.Decompose()
	assert.Equal(t, RgbAntTrail, fg)
}

func TestDrawPheromoneShading(t *testing.T) {
	s := newScreen(t, 40, 11)
	r := NewRenderer(s, true)
	r.Draw(testSnapshot())

	_, _, style, _ := s.GetContent(20, 8)
	_, bg, _ := style.Decompose()
	assert.Equal(t, RgbHomeTrail, bg)

	assert.False(t, r.TogglePheromones())
	r.Draw(testSnapshot())
	_, _, style, _ = s.GetContent(20, 8)
	_, bg, _ = style.Decompose()
	assert.NotEqual(t, RgbHomeTrail, bg)
}

func TestDrawToleratesEmptyInput(t *testing.T) {
	s := newScreen(t, 20, 5)
	r := NewRenderer(s, true)
	assert.NotPanics(t, func() {
		r.Draw(nil)
		r.Draw(&engine.Snapshot{Phase: "stopped"})
	})
	assert.True(t, strings.HasPrefix(rowText(s, 4), " STOPPED "))
}

func TestFoodGlyph(t *testing.T) {
	assert.Equal(t, '9', foodGlyph(100, 100))
	assert.Equal(t, '1', foodGlyph(1, 100))
	assert.Equal(t, '5', foodGlyph(50, 100))
	assert.Equal(t, '0', foodGlyph(0, 100))
	assert.Equal(t, '9', foodGlyph(300, 100))
}

func TestWorldSize(t *testing.T) {
	w, h := WorldSize(100, 31, 4, 8)
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 240.0, h)

	w, h = WorldSize(0, 1, 4, 8)
	assert.Equal(t, 4.0, w)
	assert.Equal(t, 8.0, h)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		ev   tcell.Event
		want Action
	}{
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), ActionTogglePause},
		{tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), ActionReset},
		{tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), ActionTogglePheromones},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), ActionQuit},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ActionQuit},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), ActionNone},
		{tcell.NewEventResize(80, 24), ActionResize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Decode(tt.ev), "%T", tt.ev)
	}
}
