//go:build !windows

package symlink

import "io/fs"

// readForeignLink reports no foreign links outside Windows.
func readForeignLink(_ string, _ fs.FileInfo) (string, bool, error) {
	return "", false, nil
}
