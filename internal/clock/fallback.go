package clock

import "time"

var epoch = time.Now()

// fallback uses the Go runtime's monotonic reading.
func fallback() time.Duration {
	return time.Since(epoch)
}
