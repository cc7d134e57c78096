package consul

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func (c *Conn) OpenRead(ctx context.Context, remote string, offset int64) (store.Reader, error) {
	if offset < 0 {
		return nil, store.NewError(store.CodeInvalidName, remote, errors.New("negative read offset"))
	}

	pair, kind, err := c.head(ctx, remote)
	if err != nil {
		return nil, err
	}
	if kind != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	value := pair.Value
	if offset >= int64(len(value)) {
		value = nil
	} else {
		value = value[offset:]
	}

	return io.NopCloser(bytes.NewReader(value)), nil
}

// OpenWrite buffers the whole value client side; the KV limit keeps
// that bounded. The value lands in a single Put when the writer is
// closed, so partial writes never become visible.
func (c *Conn) OpenWrite(ctx context.Context, remote string, mode store.WriteMode) (store.Writer, error) {
	parent := parentOf(remote)
	if parent != "" {
		if err := c.requireCollection(ctx, parent); err != nil {
			return nil, err
		}
	}

	pair, kind, err := c.head(ctx, remote)
	if err != nil && !store.IsCode(err, store.CodeNotFound) {
		return nil, err
	}
	if err == nil && kind != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	w := &writer{conn: c, remote: remote}
	if mode == store.WriteAppend && pair != nil {
		w.buf.Write(pair.Value)
	}

	return w, nil
}

type writer struct {
	conn   *Conn
	remote string
	buf    bytes.Buffer
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, data.ErrClosed
	}
	if w.buf.Len()+len(p) > maxValueSize {
		return 0, store.NewError(store.CodeUnknown, w.remote,
			fmt.Errorf("write would exceed the %d byte value limit", maxValueSize))
	}

	return w.buf.Write(p)
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if _, err := w.conn.kv.Put(&api.KVPair{Key: objectKey(w.remote), Value: w.buf.Bytes()}, nil); err != nil {
		return wrap(err, w.remote)
	}

	return nil
}
