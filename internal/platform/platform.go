// Package platform wraps the operating-system specific pieces of a copy:
// file identity, special files, metadata and chunked content transfer.
package platform

import (
	"errors"
	"os"
)

// ErrUnsupported is returned for operations the platform cannot perform.
var ErrUnsupported = errors.New("operation not supported on this platform")

// DefaultChunkSize is the transfer unit used when CopyFileParams.ChunkSize is zero.
const DefaultChunkSize = 1 << 20 // 1 MiB

// minChunkSize keeps tiny configured chunks from degenerating into per-byte syscalls.
const minChunkSize = 8 << 10

// CopyMethod identifies which syscall/strategy was used for a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyFileParams describes what to copy.
type CopyFileParams struct {
	SrcPath string
	DstFd   *os.File
	// SizeHint is the size the source reported when it was planned. It only
	// sizes the preallocation: the copy always runs to EOF, since files in
	// /proc and /sys report 0 and others grow while being copied.
	SizeHint int64
	// ChunkSize bounds each transfer step. Zero means DefaultChunkSize.
	ChunkSize int
	// OnChunk runs after every chunk with the byte count just written. A
	// non-nil error stops the copy and is returned unchanged.
	OnChunk func(n int64) error
}

func (p CopyFileParams) chunkSize() int {
	switch {
	case p.ChunkSize <= 0:
		return DefaultChunkSize
	case p.ChunkSize < minChunkSize:
		return minChunkSize
	default:
		return p.ChunkSize
	}
}

func (p CopyFileParams) afterChunk(n int64) error {
	if p.OnChunk == nil {
		return nil
	}
	return p.OnChunk(n)
}
