//go:build !linux

package platform

// CopyFile copies with read/write. Platforms without copy_file_range get no
// preallocation either, so SizeHint is unused.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	return copyReadWrite(params, 0)
}
