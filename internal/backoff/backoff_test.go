package backoff_test

import (
	"math/rand"
	"testing"
	"time"

	"isccd/internal/backoff"
)

func TestDefaultSchedule(t *testing.T) {
	policy := backoff.Default()
	want := []time.Duration{
		2 * time.Second,
		3 * time.Second,
		4500 * time.Millisecond,
		6750 * time.Millisecond,
	}
	for attempt, expected := range want {
		if got := policy.Delay(attempt); got != expected {
			t.Fatalf("attempt %d: expected %v, got %v", attempt, expected, got)
		}
	}
}

func TestDelayCapsAtMax(t *testing.T) {
	policy := backoff.Default()
	for attempt := 10; attempt < 50; attempt += 10 {
		if got := policy.Delay(attempt); got != 30*time.Second {
			t.Fatalf("attempt %d: expected cap of 30s, got %v", attempt, got)
		}
	}
}

func TestNegativeAttemptUsesInitial(t *testing.T) {
	policy := backoff.Default()
	if got := policy.Delay(-3); got != 2*time.Second {
		t.Fatalf("expected initial delay, got %v", got)
	}
}

func TestJitterBounded(t *testing.T) {
	policy := backoff.Policy{Initial: time.Second, Multiplier: 2, Max: time.Minute, Jitter: 0.5}
	rng := rand.New(rand.NewSource(1))
	for attempt := 0; attempt < 5; attempt++ {
		base := policy.Delay(attempt)
		got := policy.DelayWithJitter(attempt, rng)
		if got < base || got > base+base/2 {
			t.Fatalf("attempt %d: jittered delay %v outside [%v, %v]", attempt, got, base, base+base/2)
		}
	}
}

func TestNilRngDisablesJitter(t *testing.T) {
	policy := backoff.Default()
	if got := policy.DelayWithJitter(2, nil); got != policy.Delay(2) {
		t.Fatalf("expected base delay without rng, got %v", got)
	}
}
