// Package chrono defines simulated time.
//
// A TimePoint is an absolute instant on the simulation clock, counted in
// nanoseconds since the epoch of the run. Durations are time.Duration, so
// the usual constants and string forms apply.
package chrono

import (
	"fmt"
	"math"
	"time"
)

// Duration is a span of simulated time.
type Duration = time.Duration

// TimePoint is an instant on the simulation clock.
type TimePoint int64

const (
	// Epoch is the start of every run.
	Epoch TimePoint = 0
	// MaxTimePoint is later than any event a run can schedule.
	MaxTimePoint TimePoint = math.MaxInt64
)

// At returns the time point d after the epoch.
func At(d Duration) TimePoint {
	return Epoch.Add(d)
}

// Add returns t+d, saturating at Epoch and MaxTimePoint.
func (t TimePoint) Add(d Duration) TimePoint {
	if d > 0 && int64(t) > math.MaxInt64-int64(d) {
		return MaxTimePoint
	}
	r := int64(t) + int64(d)
	if r < int64(Epoch) {
		return Epoch
	}
	return TimePoint(r)
}

// Sub returns the duration t-u.
func (t TimePoint) Sub(u TimePoint) Duration {
	return Duration(int64(t) - int64(u))
}

// Before reports whether t is earlier than u.
func (t TimePoint) Before(u TimePoint) bool { return t < u }

// After reports whether t is later than u.
func (t TimePoint) After(u TimePoint) bool { return t > u }

// Since returns the duration elapsed since the epoch.
func (t TimePoint) Since() Duration {
	return t.Sub(Epoch)
}

func (t TimePoint) String() string {
	if t == MaxTimePoint {
		return "+inf"
	}
	return fmt.Sprintf("t+%v", Duration(t))
}
