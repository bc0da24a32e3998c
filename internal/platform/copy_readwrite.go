package platform

import (
	"errors"
	"io"
	"os"
	"sync"
)

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, DefaultChunkSize)
		return &b
	},
}

// copyReadWrite copies data from offset start to EOF through a pooled
// buffer. Reads are sequential so that files without positional read
// support (procfs, pipes behind a path) still copy.
func copyReadWrite(params CopyFileParams, start int64) (CopyResult, error) {
	srcFd, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{BytesWritten: start, Method: ReadWrite}, err
	}
	defer srcFd.Close()

	if start > 0 {
		if _, err := srcFd.Seek(start, io.SeekStart); err != nil {
			return CopyResult{BytesWritten: start, Method: ReadWrite}, err
		}
	}

	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp
	if chunk := params.chunkSize(); chunk < len(buf) {
		buf = buf[:chunk]
	} else if chunk > len(buf) {
		buf = make([]byte, chunk)
	}

	offset := start
	for {
		n, err := srcFd.Read(buf)
		if n > 0 {
			if _, werr := params.DstFd.WriteAt(buf[:n], offset); werr != nil {
				return CopyResult{BytesWritten: offset, Method: ReadWrite}, werr
			}
			offset += int64(n)
			if cerr := params.afterChunk(int64(n)); cerr != nil {
				return CopyResult{BytesWritten: offset, Method: ReadWrite}, cerr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return CopyResult{BytesWritten: offset, Method: ReadWrite}, err
		}
	}

	return CopyResult{BytesWritten: offset, Method: ReadWrite}, nil
}
