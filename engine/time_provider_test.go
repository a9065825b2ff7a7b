package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicTimeProvider(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	t1 := provider.Now()
	time.Sleep(5 * time.Millisecond)
	t2 := provider.Now()

	assert.GreaterOrEqual(t, t2.Sub(t1), 5*time.Millisecond)
}

func TestManualTimeProvider(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewManualTimeProvider(start)
	assert.True(t, mock.Now().Equal(start))

	next := start.Add(24 * time.Hour)
	mock.Set(next)
	assert.True(t, mock.Now().Equal(next))

	mock.Advance(time.Hour)
	mock.Advance(30 * time.Minute)
	assert.True(t, mock.Now().Equal(next.Add(90*time.Minute)))
}

func TestManualTimeProviderConcurrency(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewManualTimeProvider(start)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = mock.Now()
			}
		}()
	}
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				mock.Advance(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.True(t, mock.Now().Equal(start.Add(250*time.Millisecond)))
}

func TestPausableClockFreezesWhilePaused(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewManualTimeProvider(start)
	clock := NewPausableClock(mock)

	mock.Advance(5 * time.Second)
	assert.True(t, clock.Now().Equal(start.Add(5*time.Second)))

	clock.Pause()
	clock.Pause()
	assert.True(t, clock.IsPaused())
	mock.Advance(3 * time.Second)
	assert.True(t, clock.Now().Equal(start.Add(5*time.Second)))
	assert.Equal(t, 3*time.Second, clock.TotalPauseDuration())

	clock.Resume()
	mock.Advance(time.Second)
	assert.False(t, clock.IsPaused())
	assert.True(t, clock.Now().Equal(start.Add(6*time.Second)))
	assert.Equal(t, 3*time.Second, clock.TotalPauseDuration())
}
