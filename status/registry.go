package status

import (
	"sync/atomic"
	"unicode/utf8"
)

// Metric names published by the driver
const (
	EngineTicks     = "engine.ticks"
	EngineTickMS    = "engine.tick_ms"
	EngineDepleted  = "engine.depleted"
	EnginePhase     = "engine.phase"
	Pickups         = "colony.pickups"
	Deliveries      = "colony.deliveries"
	Collected       = "colony.collected"
	Remaining       = "colony.remaining"
	HomeDeposits    = "field.home.deposits"
	FoodDeposits    = "field.food.deposits"
	StreamClients   = "stream.clients"
	StreamDropped   = "stream.dropped"
	AudioCuesPlayed = "audio.cues"
)

// Registry groups the typed metric maps
// Components cache pointers at construction; tick paths write the atomics directly
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
	Labels *MetricMap[Label]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
		Labels: NewMetricMap[Label](),
	}
}

// TotalCount returns the number of metrics across all maps
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Labels.Count()
}

// Export reads every metric into a flat map suitable for JSON encoding
func (r *Registry) Export() map[string]any {
	out := make(map[string]any, r.TotalCount())
	r.Bools.Range(func(k string, v *atomic.Bool) { out[k] = v.Load() })
	r.Ints.Range(func(k string, v *atomic.Int64) { out[k] = v.Load() })
	r.Floats.Range(func(k string, v *AtomicFloat) { out[k] = v.Get() })
	r.Labels.Range(func(k string, v *Label) { out[k] = v.Load() })
	return out
}

// MaxLabelLen caps label metrics, in runes, so the status bar stays one row
const MaxLabelLen = 16

// Label is a short text metric such as the run phase; the zero value reads ""
type Label struct {
	ptr atomic.Pointer[string]
}

// Store sets the label and reports whether it changed
// Repeating the current value is a no-op so per-tick publishes do not allocate
func (l *Label) Store(val string) bool {
	if utf8.RuneCountInString(val) > MaxLabelLen {
		val = string([]rune(val)[:MaxLabelLen])
	}
	if p := l.ptr.Load(); p != nil && *p == val {
		return false
	}
	l.ptr.Store(&val)
	return true
}

// Load returns the current label
func (l *Label) Load() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
