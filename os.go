// Path-level OS helpers.
//
// Simple one-call wrappers the surrounding engine expects next to the
// locking layer: existence, deletion, path resolution, and temporary file
// naming for spill files.
package latch

import (
	"os"
	"path/filepath"
)

// tempChars is the alphabet for temporary file name suffixes.
const tempChars = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789"

// Delete removes the named file.
func Delete(path string) error {
	return os.Remove(path)
}

// Exists reports whether the named file exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FullPath turns a relative pathname into a full pathname.
func FullPath(path string) (string, error) {
	return filepath.Abs(path)
}

// TempName returns a file name under dir that does not exist at the time of
// the call: a fixed prefix plus 15 random alphanumeric characters, redrawn
// until unused.
func TempName(dir string) string {
	for {
		var b [15]byte
		for i := range b {
			b[i] = tempChars[randIntN(len(tempChars))]
		}
		name := filepath.Join(dir, "latch_"+string(b[:]))
		if !Exists(name) {
			return name
		}
	}
}
