package audio

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/antfarm/colony"
)

// attached returns a manager that mixes into its own mixer without opening a device
func attached(t *testing.T) (*SoundManager, *time.Time, *atomic.Int64) {
	t.Helper()
	sm := NewSoundManager(0.5)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }
	sm.initialized = true

	var played atomic.Int64
	sm.CountInto(&played)
	return sm, &now, &played
}

func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(1)
	assert.NotPanics(t, func() {
		sm.PlayPickup()
		sm.PlayDelivery()
		sm.PlayDepleted()
		sm.HandleTick(colony.TickReport{Tick: 1, Pickups: 3, Deliveries: 1, Depleted: true})
		sm.Cleanup()
	})
	assert.Zero(t, sm.mixer.Len())
}

func TestSoundManagerInitialization(t *testing.T) {
	sm := NewSoundManager(0.5)
	if err := sm.Initialize(); err != nil {
		t.Logf("speaker unavailable: %v", err)
		return
	}
	require.NoError(t, sm.Initialize(), "second initialize is a no-op")
	sm.PlayPickup()
	sm.Cleanup()
	sm.PlayPickup()
}

func TestSoundManagerCooldown(t *testing.T) {
	sm, now, played := attached(t)

	sm.PlayPickup()
	sm.PlayPickup()
	assert.Equal(t, int64(1), played.Load())

	sm.PlayDelivery()
	assert.Equal(t, int64(2), played.Load(), "cooldown is per cue")

	*now = now.Add(cueCooldown)
	sm.PlayPickup()
	assert.Equal(t, int64(3), played.Load())
	assert.Equal(t, 3, sm.mixer.Len())
}

func TestHandleTickDepletionOncePerRun(t *testing.T) {
	sm, now, played := attached(t)

	sm.HandleTick(colony.TickReport{Tick: 10, Depleted: true})
	assert.Equal(t, int64(1), played.Load())

	for tick := uint64(11); tick < 20; tick++ {
		*now = now.Add(time.Second)
		sm.HandleTick(colony.TickReport{Tick: tick, Depleted: true})
	}
	assert.Equal(t, int64(1), played.Load())

	// Control snapshot, then a fresh run
	sm.HandleTick(colony.TickReport{})
	sm.HandleTick(colony.TickReport{Tick: 1})
	*now = now.Add(time.Second)
	sm.HandleTick(colony.TickReport{Tick: 2, Depleted: true})
	assert.Equal(t, int64(2), played.Load())
}

func TestHandleTickMapsEvents(t *testing.T) {
	sm, _, played := attached(t)
	sm.HandleTick(colony.TickReport{Tick: 3, Pickups: 4, Deliveries: 2})
	assert.Equal(t, int64(2), played.Load())
}

func TestCuesAreFiniteAndBounded(t *testing.T) {
	for _, cue := range []Cue{CuePickup, CueDelivery, CueDepleted} {
		s := newCue(cue, sampleRate)
		buf := make([][2]float64, 512)
		total := 0
		for {
			n, ok := s.Stream(buf)
			for _, frame := range buf[:n] {
				require.LessOrEqual(t, math.Abs(frame[0]), 1.0)
				require.Equal(t, frame[0], frame[1])
			}
			total += n
			if !ok || n == 0 {
				break
			}
			require.Less(t, total, sampleRate.N(time.Second), "cue %d does not end", cue)
		}
		assert.Positive(t, total)
	}
}

func TestWithVolumeSilent(t *testing.T) {
	s := withVolume(beep.Take(100, NewChirpGenerator(sampleRate, 440, 440, time.Second)), 0)
	buf := make([][2]float64, 100)
	n, _ := s.Stream(buf)
	require.Equal(t, 100, n)
	for _, frame := range buf {
		assert.Zero(t, frame[0])
	}
}
