package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/antfarm/core"
)

// ClockScheduler calls tick on a fixed interval of simulation time
// Deadlines advance by exactly one interval per tick; when the loop falls more than two
// intervals behind it drops the backlog instead of bursting
type ClockScheduler struct {
	clock    *PausableClock
	interval time.Duration
	tick     func()

	mu               sync.Mutex
	nextTickDeadline time.Time

	tickCount atomic.Uint64

	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	running   atomic.Bool
	resetChan chan struct{}
}

// NewClockScheduler creates a stopped scheduler
func NewClockScheduler(clock *PausableClock, interval time.Duration, tick func()) *ClockScheduler {
	return &ClockScheduler{
		clock:     clock,
		interval:  interval,
		tick:      tick,
		stopChan:  make(chan struct{}),
		resetChan: make(chan struct{}, 1),
	}
}

// Start launches the scheduler loop, later calls are no-ops
func (cs *ClockScheduler) Start() {
	if cs.running.CompareAndSwap(false, true) {
		cs.resync()
		cs.wg.Add(1)
		core.Go(cs.schedulerLoop)
	}
}

// Stop halts the loop and waits for an in-flight tick to finish
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
		if cs.running.Load() {
			cs.wg.Wait()
		}
	})
}

// Resync restarts the deadline sequence one interval from now
// Called after a reset so the fresh run does not inherit the old cadence
func (cs *ClockScheduler) Resync() {
	select {
	case cs.resetChan <- struct{}{}:
	default:
	}
}

// TickCount returns the number of ticks fired
func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

func (cs *ClockScheduler) resync() {
	cs.mu.Lock()
	cs.nextTickDeadline = cs.clock.Now().Add(cs.interval)
	cs.mu.Unlock()
}

func (cs *ClockScheduler) schedulerLoop() {
	defer cs.wg.Done()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-cs.stopChan:
			return
		case <-cs.resetChan:
			cs.resync()
			continue
		default:
		}

		var sleepDuration time.Duration

		if cs.clock.IsPaused() {
			// Nothing advances while paused, poll slowly
			sleepDuration = cs.interval * 2
		} else {
			now := cs.clock.Now()

			cs.mu.Lock()
			deadline := cs.nextTickDeadline
			cs.mu.Unlock()

			if !now.Before(deadline) {
				cs.tick()
				cs.tickCount.Add(1)

				cs.mu.Lock()
				cs.nextTickDeadline = cs.nextTickDeadline.Add(cs.interval)
				if now.Sub(cs.nextTickDeadline) > cs.interval*2 {
					cs.nextTickDeadline = now.Add(cs.interval)
				}
				deadline = cs.nextTickDeadline
				cs.mu.Unlock()

				sleepDuration = max(0, deadline.Sub(cs.clock.Now()))
			} else {
				sleepDuration = deadline.Sub(now)
			}
		}

		if sleepDuration <= 0 {
			continue
		}

		timer.Reset(sleepDuration)
		select {
		case <-timer.C:
		case <-cs.resetChan:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			cs.resync()
		case <-cs.stopChan:
			return
		}
	}
}
