package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// newCue builds the finite streamer for cue
func newCue(cue Cue, sr beep.SampleRate) beep.Streamer {
	switch cue {
	case CuePickup:
		return beep.Take(sr.N(70*time.Millisecond), NewChirpGenerator(sr, 660, 990, 70*time.Millisecond))
	case CueDelivery:
		return beep.Seq(
			beep.Take(sr.N(60*time.Millisecond), NewChirpGenerator(sr, 520, 520, 60*time.Millisecond)),
			beep.Take(sr.N(90*time.Millisecond), NewChirpGenerator(sr, 780, 780, 90*time.Millisecond)),
		)
	default:
		return newChord(sr, 400*time.Millisecond, 262, 330, 392)
	}
}

// newChord mixes sine tones under a decaying envelope
func newChord(sr beep.SampleRate, d time.Duration, freqs ...float64) beep.Streamer {
	tones := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		tone, err := generators.SineTone(sr, f)
		if err != nil {
			// Frequency above Nyquist, drop the voice
			continue
		}
		tones = append(tones, tone)
	}
	if len(tones) == 0 {
		return beep.Silence(sr.N(d))
	}
	gain := 0.3 / float64(len(tones))
	return &decay{
		Streamer: beep.Take(sr.N(d), beep.Mix(tones...)),
		rate:     6 / d.Seconds() / float64(sr),
		gain:     gain,
	}
}

// decay applies gain*exp(-rate*n) to a streamer
type decay struct {
	beep.Streamer
	rate float64
	gain float64
	pos  int
}

func (e *decay) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.Streamer.Stream(samples)
	for i := range samples[:n] {
		g := e.gain * math.Exp(-e.rate*float64(e.pos))
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

// ChirpGenerator sweeps a sine from one frequency to another over a fixed duration
type ChirpGenerator struct {
	sr       beep.SampleRate
	from, to float64
	length   int
	pos      int
	phase    float64
}

// NewChirpGenerator creates a sweep lasting d
func NewChirpGenerator(sr beep.SampleRate, from, to float64, d time.Duration) *ChirpGenerator {
	return &ChirpGenerator{
		sr:     sr,
		from:   from,
		to:     to,
		length: max(1, sr.N(d)),
	}
}

func (g *ChirpGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		progress := math.Min(float64(g.pos)/float64(g.length), 1)
		freq := g.from + (g.to-g.from)*progress

		// Short attack, linear release
		env := math.Min(float64(g.pos)/float64(g.sr.N(5*time.Millisecond)+1), 1) * (1 - progress)
		sample := 0.25 * env * math.Sin(g.phase)

		g.phase += 2 * math.Pi * freq / float64(g.sr)
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChirpGenerator) Err() error {
	return nil
}
