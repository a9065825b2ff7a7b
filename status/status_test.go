package status

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricMapReturnsStablePointer(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	a := m.Get(Pickups)
	b := m.Get(Pickups)
	require.Same(t, a, b)

	a.Add(3)
	assert.Equal(t, int64(3), m.Get(Pickups).Load())
	assert.True(t, m.Has(Pickups))
	assert.False(t, m.Has(Deliveries))
	assert.Equal(t, 1, m.Count())
}

func TestMetricMapRangeSorted(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	for _, k := range []string{"c", "a", "b"} {
		m.Get(k)
	}

	var keys []string
	m.Range(func(k string, _ *atomic.Int64) { keys = append(keys, k) })
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestMetricMapConcurrentGet(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1000 {
				m.Get(EngineTicks).Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(16000), m.Get(EngineTicks).Load())
	assert.Equal(t, 1, m.Count())
}

func TestAtomicFloat(t *testing.T) {
	var f AtomicFloat
	assert.Zero(t, f.Get())

	f.Set(1.5)
	assert.Equal(t, 4.0, f.Add(2.5))

	var avg AtomicFloat
	assert.Equal(t, 10.0, avg.Smooth(10, 0.5))
	assert.Equal(t, 15.0, avg.Smooth(20, 0.5))
}

func TestLabelStore(t *testing.T) {
	var l Label
	assert.Empty(t, l.Load())

	assert.True(t, l.Store("running"))
	assert.False(t, l.Store("running"), "repeat is not a change")
	assert.Equal(t, "running", l.Load())

	assert.True(t, l.Store("a label far longer than the limit"))
	assert.Equal(t, "a label far long", l.Load())

	// Truncation counts runes, never splitting a multi-byte character
	assert.True(t, l.Store(strings.Repeat("é", 20)))
	assert.Equal(t, strings.Repeat("é", MaxLabelLen), l.Load())
	assert.True(t, utf8.ValidString(l.Load()))
}

func TestRegistryExport(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get(Collected).Store(42)
	r.Floats.Get(EngineTickMS).Set(0.25)
	r.Bools.Get(EngineDepleted).Store(true)
	r.Labels.Get(EnginePhase).Store("paused")

	assert.Equal(t, 4, r.TotalCount())
	assert.Equal(t, map[string]any{
		Collected:      int64(42),
		EngineTickMS:   0.25,
		EngineDepleted: true,
		EnginePhase:    "paused",
	}, r.Export())
}
