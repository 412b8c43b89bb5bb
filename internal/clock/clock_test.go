package clock

import (
	"testing"
	"time"
)

func TestMonotonicAdvances(t *testing.T) {
	a := Monotonic()
	time.Sleep(2 * time.Millisecond)
	b := Monotonic()
	if b <= a {
		t.Fatalf("clock did not advance: %v then %v", a, b)
	}
	if d := b - a; d < time.Millisecond || d > time.Second {
		t.Errorf("unexpected step %v for a 2ms sleep", d)
	}
}

func TestFallbackNonNegative(t *testing.T) {
	if fallback() < 0 {
		t.Error("fallback went negative")
	}
}
