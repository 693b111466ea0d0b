// Package fs defines the filesystem abstraction used to inspect and read
// local build output. Implementations live in subpackages (see fs/billy).
package fs

import (
	"os"
	"path/filepath"
)

// Filesystem is the subset of filesystem operations needed to check for,
// walk and stream a build directory. Tests write fixtures through WriteFile.
type Filesystem interface {
	// Stat returns file info for name.
	Stat(name string) (os.FileInfo, error)

	// Open opens name for reading.
	Open(name string) (File, error)

	// Walk walks the tree rooted at root in lexical order.
	Walk(root string, walkFn filepath.WalkFunc) error

	// WriteFile writes data to filename, creating it and any missing parent
	// directories if necessary.
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
