package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock is simulation time: wall time minus every paused interval
// The scheduler measures deadlines against it so a resume does not trigger a burst of catch-up ticks
type PausableClock struct {
	mu sync.RWMutex

	source    TimeProvider
	realStart time.Time

	isPaused    atomic.Bool
	pauseStart  time.Time
	totalPaused time.Duration
}

// NewPausableClock creates a running clock on source, nil uses the monotonic clock
func NewPausableClock(source TimeProvider) *PausableClock {
	if source == nil {
		source = NewMonotonicTimeProvider()
	}
	return &PausableClock{
		source:    source,
		realStart: source.Now(),
	}
}

// Now returns simulation time, frozen while paused
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		return pc.realStart.Add(pc.pauseStart.Sub(pc.realStart) - pc.totalPaused)
	}
	return pc.realStart.Add(pc.source.Now().Sub(pc.realStart) - pc.totalPaused)
}

// Pause freezes simulation time
func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.pauseStart = pc.source.Now()
	}
}

// Resume continues simulation time from where it froze
func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.totalPaused += pc.source.Now().Sub(pc.pauseStart)
		pc.pauseStart = time.Time{}
	}
}

// IsPaused reports whether simulation time is frozen
func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPauseDuration returns the cumulative paused time including a pause in progress
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPaused
	if pc.isPaused.Load() {
		total += pc.source.Now().Sub(pc.pauseStart)
	}
	return total
}
