// Package clock provides the monotonic time base shared by edge capture and
// the actuation loop.
//
// GPIO character device events are stamped with CLOCK_MONOTONIC, so the
// loop must read the same clock for staleness checks to make sense.
package clock

import "time"

// Func returns the current monotonic time as a duration since an arbitrary
// fixed epoch.
type Func func() time.Duration
