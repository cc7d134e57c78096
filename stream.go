package gridfs

import (
	"io"
)

// Streamer combines the I/O interfaces served by OpenFile. Which of
// them actually work depends on the access mode the stream was opened
// with; the others report ErrNotSupported.
type Streamer interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// Name returns the path the stream was opened with.
	Name() string

	// IsBusy tries to return the current state of the stream.
	// It should be used to determine if it's safe to close a stream.
	IsBusy() bool

	// CanRead returns true if the stream accepts reads, otherwise false.
	CanRead() bool

	// CanWrite returns true if the stream accepts writes, otherwise false.
	CanWrite() bool
}
