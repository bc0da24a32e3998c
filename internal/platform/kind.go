package platform

import "io/fs"

// FileKind classifies a filesystem entry for copying.
type FileKind int

const (
	Regular FileKind = iota
	Dir
	Symlink
	FIFO
	Socket
	Device
	Other
)

func (k FileKind) String() string {
	switch k {
	case Regular:
		return "regular file"
	case Dir:
		return "directory"
	case Symlink:
		return "symbolic link"
	case FIFO:
		return "fifo"
	case Socket:
		return "socket"
	case Device:
		return "device"
	default:
		return "other"
	}
}

// Special reports whether entries of this kind have no copyable content.
func (k FileKind) Special() bool {
	return k == FIFO || k == Socket || k == Device || k == Other
}

// Kind classifies a file mode as returned by Lstat.
func Kind(mode fs.FileMode) FileKind {
	switch {
	case mode.IsRegular():
		return Regular
	case mode.IsDir():
		return Dir
	case mode&fs.ModeSymlink != 0:
		return Symlink
	case mode&fs.ModeNamedPipe != 0:
		return FIFO
	case mode&fs.ModeSocket != 0:
		return Socket
	case mode&(fs.ModeDevice|fs.ModeCharDevice) != 0:
		return Device
	default:
		return Other
	}
}
