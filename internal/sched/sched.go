// Package sched is a cooperative fixed-rate task scheduler.
//
// Tasks are kept in a list sorted by next due time and are run one at a
// time by whoever calls Execute, so two tasks never run concurrently.
package sched

import "time"

// RunFunc is a task body. now is the time Execute was called with.
type RunFunc func(now time.Duration)

// Task is a periodic unit of work.
type Task struct {
	name    string
	period  time.Duration
	run     RunFunc
	next    time.Duration
	enabled bool
	runs    uint64
	sched   *Scheduler
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Period returns the task interval.
func (t *Task) Period() time.Duration { return t.period }

// Runs returns how many times the task has run.
func (t *Task) Runs() uint64 { return t.runs }

// Enabled reports whether the task is scheduled.
func (t *Task) Enabled() bool { return t.enabled }

// Disable removes the task from the schedule. It is a no-op if the task is
// already disabled.
func (t *Task) Disable() {
	if !t.enabled {
		return
	}
	t.enabled = false
	t.sched.remove(t)
}

// Enable schedules the task to run first at now.
func (t *Task) Enable(now time.Duration) {
	if t.enabled {
		t.sched.remove(t)
	}
	t.enabled = true
	t.next = now
	t.sched.insert(t)
}

// Scheduler runs due tasks in next-due order.
// It is not safe for concurrent use.
type Scheduler struct {
	queue []*Task
	due   []*Task
	slack time.Duration
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Every registers an enabled task that first runs at start and then every
// period. It panics if period is not positive, as time.NewTicker does.
func (s *Scheduler) Every(name string, period, start time.Duration, run RunFunc) *Task {
	if period <= 0 {
		panic("sched: non-positive period for task " + name)
	}
	t := &Task{
		name:    name,
		period:  period,
		run:     run,
		next:    start,
		enabled: true,
		sched:   s,
	}
	s.insert(t)
	return t
}

// SetSlack lets Execute run a task up to d before it is due. The task
// keeps its phase: the next run is still one period after the due time.
func (s *Scheduler) SetSlack(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.slack = d
}

// Execute runs every task due at now exactly once, earliest first; tasks
// due at the same time run in registration order. A task that has fallen
// more than a period behind skips the missed runs instead of bursting.
// It returns the number of tasks run.
func (s *Scheduler) Execute(now time.Duration) int {
	s.due = s.due[:0]
	for len(s.queue) > 0 && s.queue[0].next <= now+s.slack {
		s.due = append(s.due, s.queue[0])
		s.queue = append(s.queue[:0], s.queue[1:]...)
	}

	n := 0
	for _, t := range s.due {
		if !t.enabled {
			// Disabled by an earlier task in this batch.
			continue
		}
		t.run(now)
		t.runs++
		n++

		if !t.enabled || s.queued(t) {
			// The task disabled or re-enabled itself.
			continue
		}
		t.next += t.period
		if t.next <= now {
			t.next = now + t.period
		}
		s.insert(t)
	}
	return n
}

// NextDue returns the earliest due time. ok is false if nothing is scheduled.
func (s *Scheduler) NextDue() (next time.Duration, ok bool) {
	if len(s.queue) == 0 {
		return 0, false
	}
	return s.queue[0].next, true
}

// Len returns the number of enabled tasks.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// insert places t after every task due at or before t.next.
func (s *Scheduler) insert(t *Task) {
	i := len(s.queue)
	for i > 0 && s.queue[i-1].next > t.next {
		i--
	}
	s.queue = append(s.queue, nil)
	copy(s.queue[i+1:], s.queue[i:])
	s.queue[i] = t
}

func (s *Scheduler) remove(t *Task) {
	for i, q := range s.queue {
		if q == t {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *Scheduler) queued(t *Task) bool {
	for _, q := range s.queue {
		if q == t {
			return true
		}
	}
	return false
}
