package colony

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/antfarm/vmath"
)

func newTestField() *Field {
	return NewField(HomeField, Bounds{Width: 200, Height: 100}, 21, 50, 0.01, 2)
}

func TestFieldDepositClampsAndMerges(t *testing.T) {
	f := newTestField()

	require.True(t, f.Deposit(vmath.Vec2{X: 50, Y: 50}, 80))
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, 50.0, f.Total(), "single deposit clamped to max strength")

	// Within merge radius: reinforces instead of appending, still clamped
	require.True(t, f.Deposit(vmath.Vec2{X: 51, Y: 50}, 10))
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, 50.0, f.Total())

	require.True(t, f.Deposit(vmath.Vec2{X: 80, Y: 50}, 1))
	assert.Equal(t, 2, f.Len())
}

func TestFieldOutOfBoundsIsNoop(t *testing.T) {
	f := newTestField()

	assert.False(t, f.Deposit(vmath.Vec2{X: -1, Y: 10}, 5))
	assert.False(t, f.Deposit(vmath.Vec2{X: 200, Y: 10}, 5))
	assert.False(t, f.Deposit(vmath.Vec2{X: 10, Y: 100}, 5))
	assert.False(t, f.Deposit(vmath.Vec2{X: 10, Y: 10}, 0))
	assert.Equal(t, 0, f.Len())

	f.Deposit(vmath.Vec2{X: 1, Y: 1}, 5)
	assert.Zero(t, f.Strength(vmath.Vec2{X: -1, Y: 1}, 20), "reads outside the world are zero")
}

func TestFieldStrengthWeighting(t *testing.T) {
	f := newTestField()
	f.Deposit(vmath.Vec2{X: 50, Y: 50}, 10)

	assert.InDelta(t, 10.0, f.Strength(vmath.Vec2{X: 50, Y: 50}, 20), 1e-9)
	assert.InDelta(t, 7.5, f.Strength(vmath.Vec2{X: 55, Y: 50}, 20), 1e-9)
	assert.Zero(t, f.Strength(vmath.Vec2{X: 70, Y: 50}, 20), "deposit at exactly radius contributes nothing")

	// Contributions across bucket boundaries are summed
	f.Deposit(vmath.Vec2{X: 62, Y: 50}, 4)
	assert.InDelta(t, 7.5+4*(1-7.0/20), f.Strength(vmath.Vec2{X: 55, Y: 50}, 20), 1e-9)
}

func TestFieldZeroEvaporationKeepsStrength(t *testing.T) {
	f := newTestField()
	f.Deposit(vmath.Vec2{X: 20, Y: 20}, 3)

	for range 100 {
		assert.Zero(t, f.Evaporate(0))
		assert.Equal(t, 3.0, f.Total())
	}
}

func TestFieldDecayMonotonic(t *testing.T) {
	f := newTestField()
	f.Deposit(vmath.Vec2{X: 20, Y: 20}, 40)
	f.Deposit(vmath.Vec2{X: 120, Y: 70}, 5)
	f.Deposit(vmath.Vec2{X: 199, Y: 99}, 0.5)

	prev := f.Total()
	for range 500 {
		f.Evaporate(0.1)
		total := f.Total()
		require.LessOrEqual(t, total, prev)
		prev = total
	}
	assert.Zero(t, f.Len(), "all deposits pruned below epsilon")
	assert.Zero(t, f.Total())
}

func TestFieldQueryAfterPrune(t *testing.T) {
	f := newTestField()
	f.Deposit(vmath.Vec2{X: 10, Y: 10}, 0.011) // Pruned on first update
	f.Deposit(vmath.Vec2{X: 150, Y: 80}, 10)

	pruned := f.Evaporate(0.5)
	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, f.Len())
	assert.InDelta(t, 5.0, f.Strength(vmath.Vec2{X: 150, Y: 80}, 20), 1e-9)
	assert.Zero(t, f.Strength(vmath.Vec2{X: 10, Y: 10}, 20))

	var ages []int
	f.Each(func(d Deposit) { ages = append(ages, d.Age) })
	assert.Equal(t, []int{1}, ages)

	f.Clear()
	assert.Zero(t, f.Len())
	assert.Zero(t, f.Strength(vmath.Vec2{X: 150, Y: 80}, 20))
}

func TestFieldBucketsTrackOccupiedCells(t *testing.T) {
	f := NewField(FoodField, Bounds{Width: 1e7, Height: 1e7}, 21, 50, 0.01, 2)
	assert.Zero(t, f.Cells())

	f.Deposit(vmath.Vec2{X: 10, Y: 10}, 5)
	f.Deposit(vmath.Vec2{X: 11, Y: 10}, 5) // Merged
	f.Deposit(vmath.Vec2{X: 5e6, Y: 5e6}, 5)
	f.Deposit(vmath.Vec2{X: 1e7 - 1, Y: 1e7 - 1}, 0.015)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 3, f.Cells())

	assert.InDelta(t, 5.0, f.Strength(vmath.Vec2{X: 5e6, Y: 5e6}, 20), 1e-9)
	assert.InDelta(t, 10.0, f.Strength(vmath.Vec2{X: 10, Y: 10}, 20), 1e-9)

	// Radius spanning more cells than are occupied scans deposits directly
	assert.InDelta(t, 10*(1-1/1e3), f.Strength(vmath.Vec2{X: 10, Y: 11}, 1e3), 1e-9)

	assert.Equal(t, 1, f.Evaporate(0.5))
	assert.Equal(t, 2, f.Cells(), "emptied cell dropped from the index")

	f.Clear()
	assert.Zero(t, f.Cells())
}
