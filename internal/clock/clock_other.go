//go:build !linux

package clock

import "time"

// Monotonic returns the time since process start. Without the GPIO
// character device there are no kernel event timestamps to agree with.
func Monotonic() time.Duration {
	return fallback()
}
