//go:build unix

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// FileID returns the identity of the object path refers to, following links.
//
//nolint:gosec // G115: dev_t is signed on some platforms but never negative
func FileID(path string) (ID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return ID{}, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return ID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, nil
}
