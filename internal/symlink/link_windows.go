//go:build windows

package symlink

import (
	"io/fs"

	"golang.org/x/sys/windows"
)

// readForeignLink reads WSL symlinks, which surface as reparse points that
// os.Readlink cannot interpret.
func readForeignLink(path string, info fs.FileInfo) (string, bool, error) {
	if info.Mode()&(fs.ModeIrregular|fs.ModeSymlink) == 0 {
		return "", false, nil
	}

	buf, err := reparseData(path)
	if err != nil {
		if info.Mode()&fs.ModeSymlink != 0 {
			// Native link; let os.Readlink handle it.
			return "", false, nil
		}
		return "", false, err
	}
	return parseLxSymlink(buf)
}

func reparseData(path string) ([]byte, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	h, err := windows.CreateFile(
		p,
		0,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OPEN_REPARSE_POINT|windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(h) //nolint:errcheck // read-only handle

	buf := make([]byte, windows.MAXIMUM_REPARSE_DATA_BUFFER_SIZE)
	var n uint32
	if err := windows.DeviceIoControl(
		h,
		windows.FSCTL_GET_REPARSE_POINT,
		nil, 0,
		&buf[0], uint32(len(buf)),
		&n, nil,
	); err != nil {
		return nil, err
	}
	return buf[:n], nil
}
