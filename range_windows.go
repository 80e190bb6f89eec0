//go:build windows

package latch

import (
	"os"
	"syscall"
	"unsafe"
)

var (
	modkernel32    = syscall.NewLazyDLL("kernel32.dll")
	procLockFile   = modkernel32.NewProc("LockFile")
	procLockFileEx = modkernel32.NewProc("LockFileEx")
	procUnlockFile = modkernel32.NewProc("UnlockFile")
)

const (
	lockfileFailImmediately = 0x00000001
	lockfileExclusiveLock   = 0x00000002

	errLockViolation syscall.Errno = 33  // ERROR_LOCK_VIOLATION
	errNotLocked     syscall.Errno = 158 // ERROR_NOT_LOCKED
)

// probeCapability reports whether LockFileEx exists. Plain LockFile only
// grants exclusive locks, so without LockFileEx there is no true shared
// range lock and readers must fall back to single-byte slots.
func probeCapability() Capability {
	if procLockFileEx.Find() != nil {
		return SingleRangeOnly
	}
	return RangeCapable
}

// osRange locks byte ranges with LockFileEx where available, LockFile
// otherwise. Both paths are non-blocking: LockFileEx gets
// LOCKFILE_FAIL_IMMEDIATELY and LockFile fails immediately by design.
type osRange struct {
	f *os.File
}

func newOSRange(f *os.File) RangeLocker {
	return &osRange{f: f}
}

func (r *osRange) TryShared(off, n int64) (bool, error) {
	if procLockFileEx.Find() != nil {
		// No shared locks on this platform; an exclusive byte lock is the
		// closest available grant.
		return r.lockFile(off, n)
	}
	var ovlp syscall.Overlapped
	ovlp.Offset = uint32(off)
	ovlp.OffsetHigh = uint32(off >> 32)
	rc, _, err := procLockFileEx.Call(
		r.f.Fd(),
		lockfileFailImmediately,
		0,
		uintptr(uint32(n)),
		uintptr(uint32(n>>32)),
		uintptr(unsafe.Pointer(&ovlp)),
	)
	return lockResult(rc, err)
}

func (r *osRange) TryExclusive(off, n int64) (bool, error) {
	if procLockFileEx.Find() != nil {
		return r.lockFile(off, n)
	}
	var ovlp syscall.Overlapped
	ovlp.Offset = uint32(off)
	ovlp.OffsetHigh = uint32(off >> 32)
	rc, _, err := procLockFileEx.Call(
		r.f.Fd(),
		lockfileFailImmediately|lockfileExclusiveLock,
		0,
		uintptr(uint32(n)),
		uintptr(uint32(n>>32)),
		uintptr(unsafe.Pointer(&ovlp)),
	)
	return lockResult(rc, err)
}

func (r *osRange) Unlock(off, n int64) (bool, error) {
	rc, _, err := procUnlockFile.Call(
		r.f.Fd(),
		uintptr(uint32(off)),
		uintptr(uint32(off>>32)),
		uintptr(uint32(n)),
		uintptr(uint32(n>>32)),
	)
	if rc != 0 {
		return true, nil
	}
	if err == errNotLocked {
		// Unlocking a range we never held is a no-op.
		return true, nil
	}
	return false, err
}

// lockFile takes a non-blocking exclusive lock via plain LockFile, the one
// call available on every Windows vintage.
func (r *osRange) lockFile(off, n int64) (bool, error) {
	rc, _, err := procLockFile.Call(
		r.f.Fd(),
		uintptr(uint32(off)),
		uintptr(uint32(off>>32)),
		uintptr(uint32(n)),
		uintptr(uint32(n>>32)),
	)
	return lockResult(rc, err)
}

func lockResult(rc uintptr, err error) (bool, error) {
	if rc != 0 {
		return true, nil
	}
	if err == errLockViolation {
		return false, nil
	}
	return false, err
}
