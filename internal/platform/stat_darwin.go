//go:build darwin

package platform

import (
	"io/fs"
	"syscall"
	"time"
)

// Atime returns the access time recorded in info, or its mtime when the
// platform stat struct is unavailable.
func Atime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	}
	return info.ModTime()
}
