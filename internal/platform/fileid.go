package platform

import "fmt"

// ID is a platform-stable identity for a filesystem object: device and
// inode on unix, volume serial and file index on Windows.
type ID struct {
	Dev uint64
	Ino uint64
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.Dev, id.Ino)
}
