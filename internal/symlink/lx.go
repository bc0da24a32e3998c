package symlink

import (
	"encoding/binary"
	"errors"
	"path/filepath"
)

// ioReparseTagLxSymlink tags symlinks created from WSL. Windows path APIs
// treat them as opaque reparse points.
const ioReparseTagLxSymlink = 0xA000001D

var errMalformedReparse = errors.New("malformed reparse data")

// parseLxSymlink decodes a REPARSE_DATA_BUFFER. It returns ok=false for any
// tag other than IO_REPARSE_TAG_LX_SYMLINK.
//
// Layout: tag u32, data length u16, reserved u16, then for LX links a
// version u32 followed by the UTF-8 target.
func parseLxSymlink(buf []byte) (string, bool, error) {
	if len(buf) < 8 {
		return "", false, errMalformedReparse
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != ioReparseTagLxSymlink {
		return "", false, nil
	}

	end := 8 + int(binary.LittleEndian.Uint16(buf[4:6]))
	if end < 12 || end > len(buf) {
		return "", false, errMalformedReparse
	}
	return filepath.FromSlash(string(buf[12:end])), true, nil
}
