// Five-level lock escalation state machine.
//
// All escalation goes through Lock, all release through Unlock. The handle's
// recorded level changes only after every primitive call for the target level
// has succeeded; on failure the bytes taken mid-escalation are rolled back in
// reverse order so the handle ends exactly where it started.
//
// The one place that cannot be rolled back cheaply is a failed Exclusive
// upgrade: the shared hold must be released before the pool-wide exclusive
// attempt, so on failure Lock reacquires it (the same slot byte under the
// fallback capability). If even the reacquire fails, Lock performs a full
// release down to Unlocked rather than let the recorded level claim a
// guarantee that is no longer held. Callers that get ErrBusy from
// Lock(LevelExclusive) should check Level() before assuming they still hold
// anything.
package latch

import "fmt"

// Lock escalates the handle to target. Requesting a level at or below the
// current one is a free no-op: it issues no primitive calls and always
// succeeds. ErrBusy means a peer holds a conflicting lock and the whole
// logical operation can be retried later.
func (f *File) Lock(target Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return ErrClosed
	}
	if f.level >= target {
		return nil
	}
	from := f.level
	err := f.escalate(target)
	f.record(opLock, from, f.level, err == nil)
	return err
}

func (f *File) escalate(target Level) error {
	newPending := false
	newShared := false
	newReserved := false

	// The pending byte gates entry to Shared and is the substance of the
	// Pending level itself. It may be held transiently by a reader who is
	// mid-acquire, hence the bounded retry. Failure aborts the whole call.
	if (f.level == LevelUnlocked && target >= LevelShared) || target == LevelPending {
		ok, err := f.acquirePending()
		if err != nil {
			return fmt.Errorf("%w: pending byte: %w", ErrIO, err)
		}
		if !ok {
			return ErrBusy
		}
		newPending = true
	}

	if target >= LevelShared && f.level < LevelShared {
		ok, err := f.lockShared()
		if target < LevelPending {
			// Below Pending the gatekeeper must not persist; drop it
			// whether or not the shared grab worked.
			f.rl.Unlock(PendingByte, 1)
			newPending = false
		}
		if err != nil || !ok {
			f.rollback(newPending, false, false)
			if err != nil {
				return fmt.Errorf("%w: shared range: %w", ErrIO, err)
			}
			return ErrBusy
		}
		newShared = true
	}

	if target >= LevelReserved && f.level < LevelReserved {
		ok, err := f.rl.TryExclusive(ReservedByte, 1)
		if err != nil || !ok {
			f.rollback(newPending, newShared, false)
			if err != nil {
				return fmt.Errorf("%w: reserved byte: %w", ErrIO, err)
			}
			return ErrBusy
		}
		newReserved = true
	}

	if target == LevelExclusive {
		if f.level >= LevelShared || newShared {
			f.unlockShared()
		}
		ok, err := f.rl.TryExclusive(SharedFirst, SharedSize)
		if err == nil && ok {
			f.level = LevelExclusive
			return nil
		}

		// The shared hold was given up before the exclusive attempt. Take
		// it back so a failed upgrade leaves the caller where it started.
		relocked, reerr := f.relockShared()
		if reerr != nil || !relocked {
			if f.level >= LevelPending || newPending {
				f.rl.Unlock(PendingByte, 1)
			}
			if f.level >= LevelReserved || newReserved {
				f.rl.Unlock(ReservedByte, 1)
			}
			f.level = LevelUnlocked
		} else {
			f.rollback(newPending, newShared, newReserved)
		}
		if err != nil {
			return fmt.Errorf("%w: exclusive range: %w", ErrIO, err)
		}
		return ErrBusy
	}

	f.level = target
	return nil
}

// acquirePending tries the gatekeeper byte a few times. The byte is often
// held by a reader who will release it momentarily, so a handful of short
// retries beats failing on first contact. The retry count is fixed; beyond
// it the caller gets ErrBusy and any further backoff is the caller's policy.
func (f *File) acquirePending() (bool, error) {
	for i := 0; i < f.config.RetryCount; i++ {
		if i > 0 {
			f.sleep(f.config.RetryDelay)
		}
		ok, err := f.rl.TryExclusive(PendingByte, 1)
		if ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

// lockShared takes the read-side hold per the cached capability: the whole
// pool as one shared grant, or one random byte of it exclusively. The chosen
// slot is recorded on the handle so release and relock target the same byte.
func (f *File) lockShared() (bool, error) {
	if f.capability == SingleRangeOnly {
		f.sharedSlot = chooseSlot()
		return f.rl.TryExclusive(SharedFirst+int64(f.sharedSlot), 1)
	}
	return f.rl.TryShared(SharedFirst, SharedSize)
}

// relockShared reclaims the previous read-side hold after a failed
// exclusive upgrade. Under the fallback capability it retakes the same slot
// byte, not a fresh draw.
func (f *File) relockShared() (bool, error) {
	if f.capability == SingleRangeOnly {
		return f.rl.TryExclusive(SharedFirst+int64(f.sharedSlot), 1)
	}
	return f.rl.TryShared(SharedFirst, SharedSize)
}

func (f *File) unlockShared() (bool, error) {
	if f.capability == SingleRangeOnly {
		return f.rl.Unlock(SharedFirst+int64(f.sharedSlot), 1)
	}
	return f.rl.Unlock(SharedFirst, SharedSize)
}

// rollback undoes bytes taken earlier in a failed escalation, strongest
// first, so the handle ends exactly where it started.
func (f *File) rollback(pending, shared, reserved bool) {
	if reserved {
		f.rl.Unlock(ReservedByte, 1)
	}
	if pending {
		f.rl.Unlock(PendingByte, 1)
	}
	if shared {
		f.unlockShared()
	}
}

// Unlock releases everything this handle holds and returns it to Unlocked.
// Idempotent. Underlying unlock failures are swallowed: a stuck "still
// locked" belief is worse than an unlock that silently did not take, and the
// OS releases all locks on process exit as a backstop.
func (f *File) Unlock() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	from := f.level
	f.releaseLocked()
	if from != LevelUnlocked {
		f.record(opUnlock, from, LevelUnlocked, true)
	}
	return nil
}

// releaseLocked undoes locks in reverse order of acquisition: the
// exclusive/pending/reserved bytes before the shared range, so a
// higher-priority byte is never left held after a weaker one is gone.
func (f *File) releaseLocked() {
	if f.f == nil || f.level == LevelUnlocked {
		f.level = LevelUnlocked
		return
	}
	if f.level >= LevelExclusive {
		f.rl.Unlock(SharedFirst, SharedSize)
	}
	if f.level >= LevelPending {
		f.rl.Unlock(PendingByte, 1)
	}
	if f.level >= LevelReserved {
		f.rl.Unlock(ReservedByte, 1)
	}
	if f.level == LevelShared {
		f.unlockShared()
	}
	f.level = LevelUnlocked
}

// CheckReserved reports whether any handle, in this process or another,
// holds the Reserved level on the file. The probe's own transient lock is
// always undone before returning; a false answer leaves nothing behind.
func (f *File) CheckReserved() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return false, ErrClosed
	}
	if f.level >= LevelReserved {
		f.record(opCheck, f.level, f.level, true)
		return true, nil
	}
	ok, err := f.rl.TryExclusive(ReservedByte, 1)
	if err != nil {
		return false, fmt.Errorf("%w: reserved probe: %w", ErrIO, err)
	}
	if ok {
		f.rl.Unlock(ReservedByte, 1)
	}
	f.record(opCheck, f.level, f.level, !ok)
	return !ok, nil
}

// Level returns the current lock level of this handle.
func (f *File) Level() Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}
