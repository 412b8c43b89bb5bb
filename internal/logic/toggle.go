package logic

// Toggle flips its output once per continuous excursion into the active
// classification. Holding the stick in the active zone does nothing more;
// it has to leave and come back to flip again.
type Toggle struct {
	on    bool
	prev  bool
	rearm bool
	flips int
}

// Update feeds one cycle's classification and returns the output state.
func (t *Toggle) Update(active bool) bool {
	if t.rearm {
		t.prev = active
		t.rearm = false
		return t.on
	}
	if active && !t.prev {
		t.on = !t.on
		t.flips++
	}
	t.prev = active
	return t.on
}

// Reset turns the output off and makes the next Update only record the
// classification, so a stick already held active cannot flip the output
// on the first tick after signal recovery.
func (t *Toggle) Reset() {
	t.on = false
	t.rearm = true
}

// On returns the current output state.
func (t *Toggle) On() bool {
	return t.on
}

// Flips returns how many times the output has changed via Update.
func (t *Toggle) Flips() int {
	return t.flips
}
