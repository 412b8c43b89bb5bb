package logic

import "testing"

func TestToggleOncePerExcursion(t *testing.T) {
	for _, n := range []int{1, 2, 10, 100} {
		var tg Toggle
		for i := 0; i < n; i++ {
			tg.Update(true)
		}
		tg.Update(false)

		if tg.Flips() != 1 {
			t.Errorf("n=%d: got %d flips, want 1", n, tg.Flips())
		}
		if !tg.On() {
			t.Errorf("n=%d: expected output on after one excursion", n)
		}
	}
}

func TestToggleSecondExcursionTurnsOff(t *testing.T) {
	var tg Toggle
	seq := []bool{false, true, true, false, false, true, true, true, false}
	var out []bool
	for _, active := range seq {
		out = append(out, tg.Update(active))
	}

	want := []bool{false, true, true, true, true, false, false, false, false}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("step %d: got %v, want %v", i, out[i], want[i])
		}
	}
	if tg.Flips() != 2 {
		t.Errorf("flips: got %d, want 2", tg.Flips())
	}
}

func TestToggleResetRearms(t *testing.T) {
	var tg Toggle
	tg.Update(true)
	if !tg.On() {
		t.Fatal("expected on")
	}

	tg.Reset()
	if tg.On() {
		t.Fatal("Reset should turn the output off")
	}

	// Stick still held active when the signal comes back: no flip.
	if tg.Update(true) {
		t.Error("first update after Reset must not flip")
	}
	if tg.Update(true) {
		t.Error("holding active must not flip")
	}

	// Leaving and re-entering flips again.
	tg.Update(false)
	if !tg.Update(true) {
		t.Error("re-entering the active zone should flip on")
	}
}
