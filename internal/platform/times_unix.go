//go:build linux || darwin

package platform

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// SetTimes sets the access and modification times of path with nanosecond
// precision. Symlinks are not followed.
func SetTimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return fmt.Errorf("utimensat %s: %w", path, err)
	}
	return nil
}
