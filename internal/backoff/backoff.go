// Package backoff provides the reconnect delay policy as a plain value,
// so the schedule is testable without real sleeps.
package backoff

import (
	"math/rand"
	"time"
)

// Policy describes an exponential backoff schedule.
type Policy struct {
	Initial    time.Duration
	Multiplier float64
	Max        time.Duration
	// Jitter is the fraction of the base delay added as randomness,
	// in [0, 1). Zero disables jitter.
	Jitter float64
}

// Default matches the connect ramp the service has always used: start at 2s,
// grow by half each attempt, cap at 30s.
func Default() Policy {
	return Policy{
		Initial:    2 * time.Second,
		Multiplier: 1.5,
		Max:        30 * time.Second,
		Jitter:     0.1,
	}
}

// Delay returns the base delay for the given zero-indexed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(p.Initial)
	for i := 0; i < attempt; i++ {
		delay *= p.Multiplier
		if delay >= float64(p.Max) {
			return p.Max
		}
	}
	if delay > float64(p.Max) {
		return p.Max
	}
	return time.Duration(delay)
}

// DelayWithJitter returns the attempt's delay with jitter applied from rng.
// A nil rng returns the base delay.
func (p Policy) DelayWithJitter(attempt int, rng *rand.Rand) time.Duration {
	base := p.Delay(attempt)
	if rng == nil || p.Jitter <= 0 {
		return base
	}
	jitter := time.Duration(rng.Float64() * p.Jitter * float64(base))
	if base+jitter > p.Max {
		return p.Max
	}
	return base + jitter
}
