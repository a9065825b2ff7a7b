package engine

import (
	"sync/atomic"
	"time"
)

// TimeProvider is the source of wall time for scheduling
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider reads the system clock, including its monotonic component
type MonotonicTimeProvider struct{}

func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// ManualTimeProvider only moves when told to
// Stored as an offset from base so reads and advances are lock-free
type ManualTimeProvider struct {
	base   time.Time
	offset atomic.Int64 // Nanoseconds since base
}

func NewManualTimeProvider(start time.Time) *ManualTimeProvider {
	return &ManualTimeProvider{base: start}
}

func (m *ManualTimeProvider) Now() time.Time {
	return m.base.Add(time.Duration(m.offset.Load()))
}

// Set jumps to t, which may be earlier than the current reading
func (m *ManualTimeProvider) Set(t time.Time) {
	m.offset.Store(int64(t.Sub(m.base)))
}

// Advance moves forward by d and returns the new reading
func (m *ManualTimeProvider) Advance(d time.Duration) time.Time {
	return m.base.Add(time.Duration(m.offset.Add(int64(d))))
}
