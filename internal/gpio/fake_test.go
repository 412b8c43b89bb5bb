package gpio

import (
	"errors"
	"testing"
	"time"
)

func TestFakeEdgeSourceDeliversInOrder(t *testing.T) {
	f := NewFakeEdgeSource()

	var got []Edge
	err := f.Start(func(ch int, high bool, at time.Duration) {
		got = append(got, Edge{Channel: ch, High: high, At: at})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edges := append(Pulse(0, 0, 1500), Pulse(1, 2*time.Millisecond, 1100)...)
	if err := f.Emit(edges...); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(got))
	}
	for i := range edges {
		if got[i] != edges[i] {
			t.Errorf("edge %d: got %+v, want %+v", i, got[i], edges[i])
		}
	}
}

func TestPulseWidth(t *testing.T) {
	p := Pulse(2, time.Second, 1234)
	if !p[0].High || p[1].High {
		t.Fatalf("expected rising then falling, got %+v", p)
	}
	if d := p[1].At - p[0].At; d != 1234*time.Microsecond {
		t.Errorf("width: got %v, want 1234µs", d)
	}
	if p[0].Channel != 2 || p[1].Channel != 2 {
		t.Errorf("channel: got %d/%d, want 2", p[0].Channel, p[1].Channel)
	}
}

func TestFakeEdgeSourceNotStarted(t *testing.T) {
	f := NewFakeEdgeSource()
	if err := f.Emit(Pulse(0, 0, 1500)...); err == nil {
		t.Error("expected error emitting before Start")
	}
}

func TestFakeEdgeSourceStartTwice(t *testing.T) {
	f := NewFakeEdgeSource()
	h := func(int, bool, time.Duration) {}
	if err := f.Start(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Start(h); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestFakeEdgeSourceStartError(t *testing.T) {
	f := NewFakeEdgeSource()
	f.StartError = errors.New("simulated error")
	if err := f.Start(func(int, bool, time.Duration) {}); err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeEdgeSourceClose(t *testing.T) {
	f := NewFakeEdgeSource()
	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeBinary(t *testing.T) {
	var b FakeBinary
	if b.Last() {
		t.Error("Last should be false with no writes")
	}
	b.Set(true)
	b.Set(false)
	b.Set(true)
	if len(b.Values) != 3 || !b.Last() {
		t.Errorf("unexpected values %v", b.Values)
	}

	b.SetError = errors.New("stuck")
	if err := b.Set(false); err == nil {
		t.Error("expected SetError")
	}
	if len(b.Values) != 3 {
		t.Error("failed write should not be recorded")
	}
}

func TestFakeLevel(t *testing.T) {
	var l FakeLevel
	if l.Last() != 0 {
		t.Error("Last should be 0 with no writes")
	}
	l.SetLevel(10)
	l.SetLevel(200)
	if l.Last() != 200 || len(l.Values) != 2 {
		t.Errorf("unexpected values %v", l.Values)
	}
	l.Close()
	if !l.Closed {
		t.Error("should be closed after Close()")
	}
}
