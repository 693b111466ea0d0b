package fs

import "io/fs"

// File is an open, read-only handle on a build artifact. It is seekable so
// uploads can sniff the first bytes and rewind before sending the body.
type File interface {
	Close() error
	Name() string
	Read(p []byte) (n int, err error)
	Seek(offset int64, whence int) (int64, error)
	Stat() (fs.FileInfo, error)
}
