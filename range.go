// Byte-range lock primitive contract.
//
// RangeLocker is the narrow substrate the whole protocol is built on: a
// non-blocking try-lock and an unlock over an (offset, length) span. The
// platform-specific implementations live in range_unix.go and
// range_windows.go; tests substitute an in-memory lock table so separate
// handles behave like separate processes.
package latch

import "sync"

// RangeLocker attempts and releases advisory locks on byte ranges of one
// open file. All calls are non-blocking: a false result means another holder
// conflicts right now, an error means the primitive call itself failed.
// Unlocking a range not held by this handle is a no-op reporting success.
type RangeLocker interface {
	TryShared(off, n int64) (bool, error)
	TryExclusive(off, n int64) (bool, error)
	Unlock(off, n int64) (bool, error)
}

// Capability describes what the platform's lock primitive can express.
type Capability int

const (
	// CapAuto probes the platform once per process and caches the answer.
	CapAuto Capability = 0

	// RangeCapable platforms can hold a shared lock on a sub-range while
	// other sub-ranges stay free. Readers share the whole pool directly.
	RangeCapable Capability = 1

	// SingleRangeOnly platforms offer only exclusive locks. Readers are
	// simulated by each locking one random byte of the shared pool, so two
	// readers collide only when they draw the same byte.
	SingleRangeOnly Capability = 2
)

func (c Capability) String() string {
	switch c {
	case RangeCapable:
		return "range"
	case SingleRangeOnly:
		return "single-range"
	}
	return "auto"
}

// platformCapability is computed once and cached for the life of the
// process. The answer cannot change at runtime.
var platformCapability = sync.OnceValue(probeCapability)
