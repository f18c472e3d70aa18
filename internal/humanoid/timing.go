// internal/humanoid/timing.go
package humanoid

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Mode selects the distribution a delay is drawn from.
type Mode string

const (
	ModeUniform  Mode = "uniform"
	ModeGaussian Mode = "gaussian"
)

// gaussianResamples bounds how often an out-of-range normal draw is retried before clamping.
const gaussianResamples = 8

// ParseMode converts a case-insensitive mode name. The empty string yields the empty Mode,
// which callers treat as "use the gesture default".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case ModeUniform:
		return ModeUniform, nil
	case ModeGaussian:
		return ModeGaussian, nil
	default:
		return "", fmt.Errorf("humanoid: unknown timing mode '%s'", s)
	}
}

// Timing is the single source of entropy for a session. Every random decision the
// planner and sequencer make is drawn through it, so a fixed seed reproduces a session.
type Timing struct {
	rng *rand.Rand
}

// NewTiming wraps a seeded random source.
func NewTiming(rng *rand.Rand) *Timing {
	return &Timing{rng: rng}
}

// newSeededRand builds a PCG-backed generator. A zero seed draws one from the clock.
func newSeededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Sample draws a duration in the closed interval [min, max]. Reversed bounds are
// swapped; equal bounds return min. Gaussian draws are centred on the midpoint with
// sigma = (max-min)/6 and never escape the interval.
func (t *Timing) Sample(min, max time.Duration, mode Mode) time.Duration {
	if min > max {
		min, max = max, min
	}
	if min == max {
		return min
	}

	lo, hi := float64(min), float64(max)
	var v float64
	switch mode {
	case ModeGaussian:
		dist := distuv.Normal{Mu: (lo + hi) / 2, Sigma: (hi - lo) / 6, Src: t.rng}
		v = dist.Rand()
		for i := 0; i < gaussianResamples && (v < lo || v > hi); i++ {
			v = dist.Rand()
		}
	default:
		v = distuv.Uniform{Min: lo, Max: hi, Src: t.rng}.Rand()
	}

	d := time.Duration(math.Round(v))
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

// Uniform returns a float in [lo, hi).
func (t *Timing) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + t.rng.Float64()*(hi-lo)
}

// Gaussian returns a normal draw with the given mean and standard deviation.
func (t *Timing) Gaussian(mu, sigma float64) float64 {
	if sigma <= 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: t.rng}.Rand()
}

// IntRange returns an integer in the closed interval [lo, hi].
func (t *Timing) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + t.rng.IntN(hi-lo+1)
}

// Chance reports true with probability p.
func (t *Timing) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return t.rng.Float64() < p
}
