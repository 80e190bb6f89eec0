// Handle type and lifecycle operations.
//
// File is a per-open-file record: the underlying OS handle, the current lock
// level, and (under the fallback capability) the shared slot chosen on the
// last Shared acquire. The mutex serialises the whole acquire/release
// sequence so concurrent goroutines in one process never race on the same
// handle's level; the real concurrency the protocol exists for is other
// processes, observable only through try-lock success and failure.
package latch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// Config holds handle configuration options.
type Config struct {
	Capability Capability    // Lock primitive capability (CapAuto probes the platform)
	RetryCount int           // Pending byte attempts (default 4)
	RetryDelay time.Duration // Pause between pending attempts (default 1ms)
	TraceDepth int           // Transition trace ring size (0 disables tracing)
}

// File is an open handle on the shared database file.
type File struct {
	mu            sync.Mutex
	f             *os.File // nil once closed
	rl            RangeLocker
	path          string     // full path
	id            string     // 16 hex chars, xxh3 of the full path
	capability    Capability // resolved, never CapAuto
	readonly      bool
	removeOnClose bool
	level         Level
	sharedSlot    int // valid only while Shared under SingleRangeOnly
	config        Config
	sleep         func(time.Duration)
	events        []Event
}

// Open opens or creates the shared file read-write. If read-write access is
// denied but the file exists, the handle falls back to read-only; callers
// can check ReadOnly before attempting write levels.
func Open(path string, config Config) (*File, error) {
	if config.RetryCount == 0 {
		config.RetryCount = 4
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Millisecond
	}
	capability := config.Capability
	if capability == CapAuto {
		capability = platformCapability()
	}

	full, err := FullPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCantOpen, path, err)
	}

	readonly := false
	h, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		h, err = os.OpenFile(full, os.O_RDONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCantOpen, path, err)
		}
		readonly = true
	}

	return &File{
		f:          h,
		rl:         newOSRange(h),
		path:       full,
		id:         fmt.Sprintf("%016x", xxh3.HashString(full)),
		capability: capability,
		readonly:   readonly,
		config:     config,
		sleep:      time.Sleep,
	}, nil
}

// OpenExclusive creates a new file for this process alone. The file must not
// already exist. With removeOnClose the file is deleted when the handle
// closes, which suits temporary spill files named by TempName.
func OpenExclusive(path string, removeOnClose bool) (*File, error) {
	full, err := FullPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCantOpen, path, err)
	}
	h, err := os.OpenFile(full, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCantOpen, path, err)
	}
	return &File{
		f:             h,
		rl:            newOSRange(h),
		path:          full,
		id:            fmt.Sprintf("%016x", xxh3.HashString(full)),
		capability:    platformCapability(),
		removeOnClose: removeOnClose,
		config:        Config{RetryCount: 4, RetryDelay: time.Millisecond},
		sleep:         time.Sleep,
	}, nil
}

// Close releases any held lock and closes the handle. Safe to call twice.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	f.releaseLocked()
	err := f.f.Close()
	f.f = nil
	if f.removeOnClose {
		os.Remove(f.path)
	}
	return err
}

// Path returns the full path of the underlying file.
func (f *File) Path() string {
	return f.path
}

// ID returns a 16 hex character identity derived from the full path. Every
// process that opens the same file computes the same ID, so trace output
// from different processes can be correlated.
func (f *File) ID() string {
	return f.id
}

// ReadOnly reports whether the handle fell back to read-only at Open.
func (f *File) ReadOnly() bool {
	return f.readonly
}

// Capability returns the resolved lock primitive capability for this handle.
func (f *File) Capability() Capability {
	return f.capability
}
