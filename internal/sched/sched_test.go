package sched

import (
	"reflect"
	"testing"
	"time"
)

const ms = time.Millisecond

func TestEveryRunsAtPeriod(t *testing.T) {
	s := New()
	var at []time.Duration
	s.Every("tick", 10*ms, 0, func(now time.Duration) { at = append(at, now) })

	for now := time.Duration(0); now <= 50*ms; now += 5 * ms {
		s.Execute(now)
	}

	want := []time.Duration{0, 10 * ms, 20 * ms, 30 * ms, 40 * ms, 50 * ms}
	if !reflect.DeepEqual(at, want) {
		t.Errorf("run times: got %v, want %v", at, want)
	}
}

func TestExecuteOrdersByDueTimeThenRegistration(t *testing.T) {
	s := New()
	var order []string
	rec := func(name string) RunFunc {
		return func(time.Duration) { order = append(order, name) }
	}
	s.Every("report", 1000*ms, 5*ms, rec("report"))
	s.Every("actuate", 10*ms, 0, rec("actuate"))
	s.Every("status", 10*ms, 0, rec("status"))

	if n := s.Execute(10 * ms); n != 3 {
		t.Fatalf("Execute ran %d tasks, want 3", n)
	}
	want := []string{"actuate", "status", "report"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestExecuteRunsEachTaskOncePerCall(t *testing.T) {
	s := New()
	task := s.Every("tick", 10*ms, 0, func(time.Duration) {})

	// Far behind: one run, then rescheduled relative to now.
	if n := s.Execute(95 * ms); n != 1 {
		t.Errorf("Execute ran %d tasks, want 1", n)
	}
	next, ok := s.NextDue()
	if !ok || next != 105*ms {
		t.Errorf("NextDue: got (%v, %v), want (105ms, true)", next, ok)
	}
	if task.Runs() != 1 {
		t.Errorf("Runs: got %d, want 1", task.Runs())
	}
}

func TestExecuteKeepsCadenceWhenSlightlyLate(t *testing.T) {
	s := New()
	s.Every("tick", 10*ms, 0, func(time.Duration) {})

	s.Execute(3 * ms)
	next, _ := s.NextDue()
	if next != 10*ms {
		t.Errorf("NextDue: got %v, want 10ms (no drift)", next)
	}
}

func TestNothingDue(t *testing.T) {
	s := New()
	s.Every("later", 10*ms, 100*ms, func(time.Duration) { t.Error("should not run") })
	if n := s.Execute(50 * ms); n != 0 {
		t.Errorf("Execute ran %d tasks, want 0", n)
	}
}

func TestDisableEnable(t *testing.T) {
	s := New()
	runs := 0
	task := s.Every("tick", 10*ms, 0, func(time.Duration) { runs++ })

	task.Disable()
	task.Disable()
	if task.Enabled() || s.Len() != 0 {
		t.Fatal("task should be disabled and unscheduled")
	}
	s.Execute(100 * ms)
	if runs != 0 {
		t.Errorf("disabled task ran %d times", runs)
	}
	if _, ok := s.NextDue(); ok {
		t.Error("NextDue should report nothing scheduled")
	}

	task.Enable(200 * ms)
	s.Execute(200 * ms)
	if runs != 1 {
		t.Errorf("re-enabled task ran %d times, want 1", runs)
	}
}

func TestTaskDisablesAnother(t *testing.T) {
	s := New()
	var second *Task
	ran := false
	s.Every("first", 10*ms, 0, func(time.Duration) { second.Disable() })
	second = s.Every("second", 10*ms, 0, func(time.Duration) { ran = true })

	s.Execute(0)
	if ran {
		t.Error("task disabled earlier in the batch should not run")
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}
}

func TestTaskDisablesItself(t *testing.T) {
	s := New()
	var task *Task
	task = s.Every("once", 10*ms, 0, func(time.Duration) { task.Disable() })

	s.Execute(0)
	s.Execute(10 * ms)
	if task.Runs() != 1 {
		t.Errorf("Runs: got %d, want 1", task.Runs())
	}
}

func TestEveryPanicsOnBadPeriod(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero period")
		}
	}()
	New().Every("bad", 0, 0, func(time.Duration) {})
}

func TestSlackRunsJitteredTicks(t *testing.T) {
	s := New()
	s.SetSlack(5 * ms)
	task := s.Every("actuate", 10*ms, 10*ms, func(time.Duration) {})

	// A ticker woken slightly early or late must still run the task once
	// per wake-up.
	for i, now := range []time.Duration{10 * ms, 19 * ms, 31 * ms, 39 * ms, 50 * ms} {
		if n := s.Execute(now); n != 1 {
			t.Errorf("wake %d at %v: ran %d tasks, want 1", i, now, n)
		}
	}
	if next, _ := s.NextDue(); next != 60*ms {
		t.Errorf("NextDue: got %v, want 60ms (phase kept)", next)
	}
	if task.Runs() != 5 {
		t.Errorf("Runs: got %d, want 5", task.Runs())
	}
}

func TestSlackDoesNotRunTwicePerPeriod(t *testing.T) {
	s := New()
	s.SetSlack(5 * ms)
	task := s.Every("actuate", 10*ms, 0, func(time.Duration) {})

	s.Execute(0)
	s.Execute(2 * ms)
	if task.Runs() != 1 {
		t.Errorf("Runs: got %d, want 1", task.Runs())
	}
}
