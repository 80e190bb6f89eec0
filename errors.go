// Package latch provides cooperative cross-process concurrency control over a
// single shared database file, using nothing but the operating system's
// advisory byte-range locks.
//
// Multiple independent processes may open the same file. The protocol lets
// many of them read concurrently, lets exactly one at a time prepare to
// write, and lets that one writer exclude all others for the duration of a
// commit, with no central lock broker. Coordination happens entirely through
// contention on a handful of agreed byte offsets near the 4GB mark, far
// beyond any realistic file payload. Those offsets are never read or written
// as data; they exist only to be locked.
//
// A handle moves through five ordered lock levels (Unlocked, Shared,
// Reserved, Pending, Exclusive). On platforms whose lock primitive cannot
// express a true shared range lock, readers fall back to locking one randomly
// chosen byte out of a shared pool, trading guaranteed reader concurrency for
// probabilistic reader concurrency.
package latch

import "errors"

// Sentinel errors for programmatic handling. Callers can use errors.Is to
// distinguish contention (ErrBusy — always retryable later) from primitive
// failure (ErrIO — the lock call itself went wrong).
var (
	ErrBusy          = errors.New("conflicting lock held elsewhere")
	ErrClosed        = errors.New("file is closed")
	ErrCantOpen      = errors.New("cannot open file")
	ErrIO            = errors.New("lock primitive failed")
	ErrTraceDisabled = errors.New("tracing is disabled")
	ErrSnapshot      = errors.New("snapshot decode failed")
)
