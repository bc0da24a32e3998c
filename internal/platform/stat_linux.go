//go:build linux

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
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return info.ModTime()
}
