// File I/O passthroughs.
//
// The locking protocol never reads or writes the lock bytes as data; these
// methods exist so the surrounding engine can do its real I/O through the
// same handle whose lock level it manages. They are thin wrappers: the only
// value added is the closed-handle check, taken under the handle mutex so a
// concurrent Close cannot invalidate the descriptor mid-check.
package latch

import "os"

func (f *File) handle() (*os.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil, ErrClosed
	}
	return f.f, nil
}

// ReadAt reads len(p) bytes from the given offset.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	h, err := f.handle()
	if err != nil {
		return 0, err
	}
	return h.ReadAt(p, off)
}

// WriteAt writes len(p) bytes at the given offset.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	h, err := f.handle()
	if err != nil {
		return 0, err
	}
	return h.WriteAt(p, off)
}

// Truncate changes the file size.
func (f *File) Truncate(n int64) error {
	h, err := f.handle()
	if err != nil {
		return err
	}
	return h.Truncate(n)
}

// Sync commits outstanding writes to stable storage.
func (f *File) Sync() error {
	h, err := f.handle()
	if err != nil {
		return err
	}
	return h.Sync()
}

// Size returns the current file size in bytes.
func (f *File) Size() (int64, error) {
	h, err := f.handle()
	if err != nil {
		return 0, err
	}
	info, err := h.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
