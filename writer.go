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

// writeStream buffers writes into fixed-size chunks and streams them
// to a staging object; the final name only appears once Close renames
// the staging object over it. A stream that fails mid-write removes
// its staging object on the way out, so half-written data never
// becomes visible.
type writeStream struct {
	fs      *FileSystem
	local   string
	remote  string
	staging string
	session *session.Session

	mu      sync.Mutex
	ctx     context.Context
	wc      store.Writer
	buf     []byte
	written int64
	closed  bool
	dead    bool
}

// newWriteStream prepares the staging object for the requested mode.
// Appends seed the staging object with the current content, through a
// server-side copy when the store offers one and by restreaming
// through the client otherwise.
func newWriteStream(ctx context.Context, f *FileSystem, s *session.Session, local, remote string, mode data.AccessMode) (*writeStream, error) {
	stat, err := s.Conn.Stat(ctx, remote, data.StatBasic)
	exists := err == nil
	if err != nil && !store.IsCode(err, store.CodeNotFound) {
		return nil, err
	}

	if exists && stat.Kind != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}
	if exists && mode.HasExcl() {
		return nil, store.NewError(store.CodeExists, remote, errors.New("data object already exists"))
	}

	w := &writeStream{
		fs:      f,
		local:   local,
		remote:  remote,
		staging: data.NewStagingPath(remote),
		session: s,
		ctx:     ctx,
		buf:     make([]byte, 0, f.opts.ChunkSize),
	}

	if mode.HasAppend() && exists {
		if err := w.seedAppend(ctx); err != nil {
			return nil, err
		}
		return w, nil
	}

	wc, err := s.Conn.OpenWrite(ctx, w.staging, store.WriteCreate)
	if err != nil {
		return nil, err
	}
	w.wc = wc

	return w, nil
}

// seedAppend makes the staging object start out as a copy of the
// target so appended chunks land behind the existing content.
func (w *writeStream) seedAppend(ctx context.Context) error {
	conn := w.session.Conn
	caps := conn.GetCapabilities()

	if caps.Contains(store.CapabilityServerCopy) && caps.Contains(store.CapabilityAppend) {
		if err := conn.Copy(ctx, w.remote, w.staging); err != nil {
			return err
		}

		wc, err := conn.OpenWrite(ctx, w.staging, store.WriteAppend)
		if err != nil {
			w.scrapStaging()
			return err
		}
		w.wc = wc

		return nil
	}

	wc, err := conn.OpenWrite(ctx, w.staging, store.WriteCreate)
	if err != nil {
		return err
	}

	rc, err := conn.OpenRead(ctx, w.remote, 0)
	if err != nil {
		wc.Close()
		w.scrapStaging()
		return err
	}

	_, err = io.CopyBuffer(wc, rc, make([]byte, w.fs.opts.ChunkSize))
	rc.Close()
	if err != nil {
		wc.Close()
		w.scrapStaging()
		return err
	}

	w.wc = wc
	return nil
}

// Write buffers p and flushes the buffer to the store whenever a full
// chunk accumulates.
func (w *writeStream) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, data.ErrClosed
	}

	select {
	case <-w.ctx.Done():
		return 0, w.ctx.Err()
	default:
	}

	total := 0
	for len(p) > 0 {
		space := w.fs.opts.ChunkSize - len(w.buf)
		if space > len(p) {
			space = len(p)
		}

		w.buf = append(w.buf, p[:space]...)
		p = p[space:]
		total += space

		if len(w.buf) >= w.fs.opts.ChunkSize {
			if err := w.flush(); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// flush pushes the buffered chunk to the staging object.
func (w *writeStream) flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	if _, err := w.wc.Write(w.buf); err != nil {
		if store.IsConnection(err) {
			w.dead = true
		}
		return mapStoreError(err)
	}

	w.written += int64(len(w.buf))
	w.buf = w.buf[:0]

	return nil
}

// Read is not available on write streams.
func (w *writeStream) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("%w: stream is write-only", data.ErrNotSupported)
}

// Seek is not available on write streams; writes are sequential.
func (w *writeStream) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("%w: write streams are sequential", data.ErrNotSupported)
}

// Close flushes the tail chunk, publishes the staging object under
// the final name and releases the session. On failure the staging
// object is removed and the target left exactly as it was.
func (w *writeStream) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return data.ErrClosed
	}
	w.closed = true

	err := w.flush()
	if cerr := w.wc.Close(); err == nil && cerr != nil {
		if store.IsConnection(cerr) {
			w.dead = true
		}
		err = mapStoreError(cerr)
	}

	if err == nil {
		if rerr := w.session.Conn.Rename(w.ctx, w.staging, w.remote); rerr != nil {
			if store.IsConnection(rerr) {
				w.dead = true
			}
			err = mapStoreError(rerr)
		}
	}

	if err != nil {
		w.scrapStaging()
		w.fs.finishStream(w.session, w.dead)
		return opError("close", w.local, err)
	}

	w.fs.finishStream(w.session, w.dead)
	return nil
}

// scrapStaging removes the staging object, best effort.
func (w *writeStream) scrapStaging() {
	ctx := w.ctx
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	if err := w.session.Conn.RemoveObject(ctx, w.staging); err != nil && !store.IsCode(err, store.CodeNotFound) {
		w.fs.log.Debug("Failed to remove staging object '%s': %v", w.staging, err)
	}
}

func (w *writeStream) Name() string {
	return w.local
}

func (w *writeStream) IsBusy() bool {
	if !w.mu.TryLock() {
		return true
	}
	w.mu.Unlock()

	return false
}

func (w *writeStream) CanRead() bool {
	return false
}

func (w *writeStream) CanWrite() bool {
	return true
}
