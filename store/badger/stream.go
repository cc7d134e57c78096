package badger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func (c *Conn) OpenRead(ctx context.Context, remote string, offset int64) (store.Reader, error) {
	if offset < 0 {
		return nil, store.NewError(store.CodeInvalidName, remote, errors.New("negative read offset"))
	}

	var content []byte
	err := c.db.View(func(txn *badgerdb.Txn) error {
		meta, err := getMeta(txn, remote)
		if err != nil {
			return err
		}
		if meta.Kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
		}

		item, err := txn.Get(contentKey(remote))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		content, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, wrap(err, remote)
	}

	if offset >= int64(len(content)) {
		content = nil
	} else {
		content = content[offset:]
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

// OpenWrite buffers the value and commits it in one transaction when
// the writer closes, so other sessions never observe partial content.
func (c *Conn) OpenWrite(ctx context.Context, remote string, mode store.WriteMode) (store.Writer, error) {
	w := &writer{conn: c, remote: remote}

	err := c.db.View(func(txn *badgerdb.Txn) error {
		parent := parentOf(remote)
		if parent != "" {
			if err := requireCollection(txn, parent); err != nil {
				if store.IsCode(err, store.CodeNotFound) {
					return store.NewError(store.CodeNotFound, parent, errors.New("parent collection does not exist"))
				}
				return err
			}
		}

		meta, err := getMeta(txn, remote)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if meta.Kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
		}

		if mode == store.WriteAppend {
			item, err := txn.Get(contentKey(remote))
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			return item.Value(func(val []byte) error {
				w.buf.Write(val)
				return nil
			})
		}

		return nil
	})
	if err != nil {
		return nil, wrap(err, remote)
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

	return w.buf.Write(p)
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.conn.db.Update(func(txn *badgerdb.Txn) error {
		meta, err := getMeta(txn, w.remote)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			meta = newMeta(data.KindDataObject, w.conn.owner)
		} else if err != nil {
			return err
		}

		meta.Size = int64(w.buf.Len())
		meta.ModifyTime = time.Now().UnixMilli()

		if err := txn.Set(metaKey(w.remote), encodeMeta(meta)); err != nil {
			return err
		}
		return txn.Set(contentKey(w.remote), w.buf.Bytes())
	})

	return wrap(err, w.remote)
}
