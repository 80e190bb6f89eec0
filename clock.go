// Wall-clock collaborators.
package latch

import "time"

// unixEpochJD is the Julian Day number of 1970-01-01T00:00:00Z.
const unixEpochJD = 2440587.5

// CurrentTime returns the current UTC time as a Julian Day number, the
// interchange form the surrounding engine stores timestamps in.
func CurrentTime() float64 {
	return float64(time.Now().UnixNano())/1e9/86400.0 + unixEpochJD
}

// Sleep pauses for the given number of milliseconds and reports how long it
// slept.
func Sleep(ms int) int {
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return ms
}

// now returns the current time in unix milliseconds.
func now() int64 {
	return time.Now().UnixMilli()
}
