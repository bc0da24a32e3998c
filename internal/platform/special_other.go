//go:build !unix

package platform

import (
	"io/fs"
	"os"
)

// Mkfifo is unsupported where named pipes do not live in the filesystem.
func Mkfifo(path string, _ fs.FileMode) error {
	return &os.PathError{Op: "mkfifo", Path: path, Err: ErrUnsupported}
}

// Owner reports no ownership information.
func Owner(_ fs.FileInfo) (uid, gid int, ok bool) {
	return 0, 0, false
}

// Chown is a no-op where ownership is not expressed as uid/gid.
func Chown(_ string, _ fs.FileInfo) error {
	return nil
}
