package mqtt

import (
	"log"
	"sync"
)

// message is a serialized publish held for replay after reconnection.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while the broker is unreachable. When
// full, the oldest message is dropped. It is shared between the run loop
// and the paho connect handler.
type outbox struct {
	mu      sync.Mutex
	msgs    []message
	start   int // index of the oldest message
	n       int
	dropped int // dropped since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{msgs: make([]message, capacity)}
}

// add queues m and reports whether an older message had to be dropped.
func (o *outbox) add(m message) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	size := len(o.msgs)
	if o.n < size {
		o.msgs[(o.start+o.n)%size] = m
		o.n++
		return false
	}
	if o.dropped == 0 {
		log.Printf("mqtt: outbox full (%d messages), dropping oldest", size)
	}
	o.msgs[o.start] = m
	o.start = (o.start + 1) % size
	o.dropped++
	return true
}

// take removes and returns every queued message, oldest first, plus the
// number dropped since the previous take.
func (o *outbox) take() ([]message, int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.n == 0 {
		d := o.dropped
		o.dropped = 0
		return nil, d
	}
	out := make([]message, o.n)
	for i := range out {
		out[i] = o.msgs[(o.start+i)%len(o.msgs)]
	}
	d := o.dropped
	o.start, o.n, o.dropped = 0, 0, 0
	return out, d
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.n
}
