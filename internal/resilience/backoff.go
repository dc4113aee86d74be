package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy selects how retry delays grow between attempts.
type Strategy string

const (
	StrategyExponential Strategy = "exponential"
	StrategyLinear      Strategy = "linear"
	StrategyFixed       Strategy = "fixed"
)

// ComputeDelay returns the backoff before retry number attempt (0-based).
// Jitter spreads callers across a +/-20% window; the cap applies after
// jitter so the configured maximum is a hard bound.
func ComputeDelay(strategy Strategy, attempt int, base, max time.Duration) time.Duration {
	var delay time.Duration
	switch strategy {
	case StrategyLinear:
		delay = base * time.Duration(attempt+1)
	case StrategyFixed:
		delay = base
	default:
		delay = time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	}

	jittered := time.Duration(float64(delay) * (0.8 + 0.4*rand.Float64()))
	if jittered > max {
		return max
	}
	return jittered
}
