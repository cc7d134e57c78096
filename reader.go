package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/session"
	"github.com/mwantia/gridfs/store"
)

// readStream serves sequential and seekable reads over one pooled
// session. Seeks reopen the remote stream, through a ranged open when
// the store supports it and by discarding a prefix when it does not.
type readStream struct {
	fs      *FileSystem
	local   string
	remote  string
	size    int64
	ranged  bool
	session *session.Session

	mu     sync.Mutex
	ctx    context.Context
	rc     store.Reader
	offset int64
	closed bool
	dead   bool
}

// newReadStream opens the remote object on the given session. The
// stat up front pins the size for SeekEnd and rejects collections.
func newReadStream(ctx context.Context, f *FileSystem, s *session.Session, local, remote string) (*readStream, error) {
	stat, err := s.Conn.Stat(ctx, remote, data.StatSize)
	if err != nil {
		return nil, err
	}
	if stat.Kind != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	rc, err := s.Conn.OpenRead(ctx, remote, 0)
	if err != nil {
		return nil, err
	}

	return &readStream{
		fs:      f,
		local:   local,
		remote:  remote,
		size:    stat.Size,
		ranged:  s.Conn.GetCapabilities().Contains(store.CapabilityRangeRead),
		session: s,
		ctx:     ctx,
		rc:      rc,
	}, nil
}

// Read reads up to len(p) bytes at the current offset and advances
// it.
func (r *readStream) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, data.ErrClosed
	}

	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	n, err := r.rc.Read(p)
	if n > 0 {
		r.offset += int64(n)
	}
	if err != nil && err != io.EOF {
		if store.IsConnection(err) {
			r.dead = true
		}
		return n, mapStoreError(err)
	}

	return n, err
}

// Write is not available on read streams.
func (r *readStream) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("%w: stream is read-only", data.ErrNotSupported)
}

// Seek sets the offset for the next Read and returns it. Seeking past
// the end is allowed and yields EOF on the next read.
func (r *readStream) Seek(offset int64, whence int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, data.ErrClosed
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = r.offset + offset
	case io.SeekEnd:
		target = r.size + offset
	default:
		return 0, fmt.Errorf("%w: unknown whence %d", data.ErrInvalid, whence)
	}

	if target < 0 {
		return 0, fmt.Errorf("%w: negative seek offset", data.ErrInvalid)
	}
	if target == r.offset {
		return target, nil
	}

	if err := r.reopen(target); err != nil {
		return 0, err
	}

	r.offset = target
	return target, nil
}

// reopen repositions the remote stream at the target offset.
func (r *readStream) reopen(target int64) error {
	if err := r.rc.Close(); err != nil {
		r.fs.log.Debug("Failed to close stream for '%s' before reopen: %v", r.local, err)
	}

	openAt := target
	if !r.ranged {
		openAt = 0
	}

	rc, err := r.session.Conn.OpenRead(r.ctx, r.remote, openAt)
	if err != nil {
		if store.IsConnection(err) {
			r.dead = true
		}
		return mapStoreError(err)
	}

	if !r.ranged && target > 0 {
		if _, err := io.CopyN(io.Discard, rc, target); err != nil && err != io.EOF {
			rc.Close()
			if store.IsConnection(err) {
				r.dead = true
			}
			return mapStoreError(err)
		}
	}

	r.rc = rc
	return nil
}

// Close releases the stream's session back to the pool.
func (r *readStream) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return data.ErrClosed
	}
	r.closed = true

	err := r.rc.Close()
	r.fs.finishStream(r.session, r.dead)

	if err != nil {
		return opError("close", r.local, mapStoreError(err))
	}

	return nil
}

func (r *readStream) Name() string {
	return r.local
}

func (r *readStream) IsBusy() bool {
	if !r.mu.TryLock() {
		return true
	}
	r.mu.Unlock()

	return false
}

func (r *readStream) CanRead() bool {
	return true
}

func (r *readStream) CanWrite() bool {
	return false
}
