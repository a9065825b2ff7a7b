package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/antfarm/colony"
)

const (
	sampleRate = beep.SampleRate(44100)

	// Minimum spacing between two cues of the same kind
	cueCooldown = 120 * time.Millisecond
)

// Cue identifies a sound
type Cue uint8

const (
	CuePickup Cue = iota
	CueDelivery
	CueDepleted
	cueCount
)

// SoundManager plays short cues for colony events
// Every method is a safe no-op until Initialize succeeds
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool

	now      func() time.Time
	lastCue  [cueCount]time.Time
	depleted bool

	played *atomic.Int64 // Optional cue counter
}

// NewSoundManager creates a manager at volume in [0,1]
func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: min(1, max(0, volume)),
		now:    time.Now,
	}
}

// CountInto makes the manager increment counter for every cue played
func (sm *SoundManager) CountInto(counter *atomic.Int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.played = counter
}

// Initialize opens the speaker; fails on hosts without an audio device
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences pending cues; the speaker itself stays open for the process
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// PlayPickup plays a short rising chirp
func (sm *SoundManager) PlayPickup() {
	sm.play(CuePickup)
}

// PlayDelivery plays a two-note blip
func (sm *SoundManager) PlayDelivery() {
	sm.play(CueDelivery)
}

// PlayDepleted plays a chord when the last source empties
func (sm *SoundManager) PlayDepleted() {
	sm.play(CueDepleted)
}

// HandleTick maps a tick report to cues; depletion sounds once per run
func (sm *SoundManager) HandleTick(report colony.TickReport) {
	if report.Pickups > 0 {
		sm.PlayPickup()
	}
	if report.Deliveries > 0 {
		sm.PlayDelivery()
	}

	sm.mu.Lock()
	// Tick 1 starts a new run
	if report.Tick == 1 {
		sm.depleted = false
	}
	fire := report.Depleted && !sm.depleted
	if report.Tick > 0 {
		sm.depleted = report.Depleted
	}
	sm.mu.Unlock()

	if fire {
		sm.PlayDepleted()
	}
}

func (sm *SoundManager) play(cue Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	now := sm.now()
	if now.Sub(sm.lastCue[cue]) < cueCooldown {
		return
	}
	sm.lastCue[cue] = now

	s := withVolume(newCue(cue, sampleRate), sm.volume)
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()

	if sm.played != nil {
		sm.played.Add(1)
	}
}

// withVolume scales s linearly, vol 0 is silent
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
