//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile copies with copy_file_range(2), falling back to read/write on
// unsupported or cross-device errors. Pseudo files (procfs, sysfs) make
// copy_file_range report EOF immediately, so a source that yielded nothing
// is retried with read/write.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	preallocate(params.DstFd, params.SizeHint)

	result, err := copyFileRange(params)
	switch {
	case err != nil && isFallbackErr(err):
		return copyReadWrite(params, result.BytesWritten)
	case err == nil && result.BytesWritten == 0:
		return copyReadWrite(params, 0)
	}
	return result, err
}

//nolint:gosec // G115: fd values are small non-negative integers
func copyFileRange(params CopyFileParams) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer srcFd.Close()

	chunk := params.chunkSize()
	var roff, woff int64
	for {
		n, err := unix.CopyFileRange(int(srcFd.Fd()), &roff, int(params.DstFd.Fd()), &woff, chunk, 0)
		if err != nil {
			return CopyResult{BytesWritten: woff, Method: CopyFileRange}, err
		}
		if n == 0 {
			break
		}
		if err := params.afterChunk(int64(n)); err != nil {
			return CopyResult{BytesWritten: woff, Method: CopyFileRange}, err
		}
	}

	return CopyResult{BytesWritten: woff, Method: CopyFileRange}, nil
}

// isFallbackErr returns true if err should trigger a fallback to read/write.
func isFallbackErr(err error) bool {
	for _, e := range []error{unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP, unix.EOPNOTSUPP} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
