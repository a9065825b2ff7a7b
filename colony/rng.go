package colony

import (
	"math"
	"math/rand/v2"
)

// worldRand is the single random source of a run, seeded for reproducibility
type worldRand struct {
	r *rand.Rand
}

func newWorldRand(seed uint64) *worldRand {
	return &worldRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (w *worldRand) Float64() float64 {
	return w.r.Float64()
}

func (w *worldRand) angle() float64 {
	return w.r.Float64() * 2 * math.Pi
}

func (w *worldRand) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + w.r.Float64()*(hi-lo)
}

// intN returns [0,n), zero when n <= 0
func (w *worldRand) intN(n int) int {
	if n <= 0 {
		return 0
	}
	return w.r.IntN(n)
}

// centered returns a value in [-amplitude/2, amplitude/2)
func (w *worldRand) centered(amplitude float64) float64 {
	return (w.r.Float64() - 0.5) * amplitude
}
