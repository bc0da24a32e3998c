//go:build unix

package platform

import (
	"io/fs"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Mkfifo creates a named pipe at path.
func Mkfifo(path string, mode fs.FileMode) error {
	if err := unix.Mkfifo(path, uint32(mode.Perm())); err != nil {
		return &os.PathError{Op: "mkfifo", Path: path, Err: err}
	}
	return nil
}

// Owner returns the uid and gid recorded in info.
func Owner(info fs.FileInfo) (uid, gid int, ok bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return int(st.Uid), int(st.Gid), true
}

// Chown gives path the owner and group recorded in info without following
// links. Unprivileged callers usually get EPERM for foreign owners.
func Chown(path string, info fs.FileInfo) error {
	uid, gid, ok := Owner(info)
	if !ok {
		return nil
	}
	if err := unix.Lchown(path, uid, gid); err != nil {
		return &os.PathError{Op: "lchown", Path: path, Err: err}
	}
	return nil
}
