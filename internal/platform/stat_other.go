//go:build !linux && !darwin

package platform

import (
	"io/fs"
	"os"
	"time"
)

// Atime falls back to the modification time where no portable access time exists.
func Atime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

// SetTimes sets the access and modification times of path.
func SetTimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}
