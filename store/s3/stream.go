package s3

import (
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func (c *Conn) OpenRead(ctx context.Context, remote string, offset int64) (store.Reader, error) {
	if offset < 0 {
		return nil, store.NewError(store.CodeInvalidName, remote, errors.New("negative read offset"))
	}

	info, kind, err := c.head(ctx, remote)
	if err != nil {
		return nil, err
	}
	if kind != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}
	if offset >= info.Size {
		return &drainedReader{}, nil
	}

	opts := minio.GetObjectOptions{}
	if offset > 0 {
		if err := opts.SetRange(offset, 0); err != nil {
			return nil, wrap(err, remote)
		}
	}

	object, err := c.client.GetObject(ctx, c.bucket, objectKey(remote), opts)
	if err != nil {
		return nil, wrap(err, remote)
	}

	return &reader{object: object, remote: remote}, nil
}

type reader struct {
	object *minio.Object
	remote string
}

func (r *reader) Read(p []byte) (int, error) {
	n, err := r.object.Read(p)
	if err != nil && err != io.EOF {
		return n, wrap(err, r.remote)
	}

	return n, err
}

func (r *reader) Close() error {
	return r.object.Close()
}

// drainedReader serves opens positioned at or past the object end,
// where a ranged GET would fail instead of returning empty.
type drainedReader struct{}

func (*drainedReader) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (*drainedReader) Close() error {
	return nil
}

// OpenWrite streams into a multipart upload through a pipe. Nothing
// becomes visible under the key until the writer is closed and the
// upload completes.
func (c *Conn) OpenWrite(ctx context.Context, remote string, mode store.WriteMode) (store.Writer, error) {
	if mode == store.WriteAppend {
		return nil, store.NewError(store.CodeNotSupported, remote, errors.New("append is not supported"))
	}

	parent := parentOf(remote)
	if parent != "" {
		if err := c.requireCollection(ctx, parent); err != nil {
			return nil, err
		}
	}

	if _, kind, err := c.head(ctx, remote); err == nil && kind == data.KindCollection {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	} else if err != nil && !store.IsCode(err, store.CodeNotFound) {
		return nil, err
	}

	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		_, err := c.client.PutObject(ctx, c.bucket, objectKey(remote), pr, -1, minio.PutObjectOptions{})
		if err != nil {
			pr.CloseWithError(err)
		}
		done <- err
	}()

	return &writer{pipe: pw, done: done, remote: remote}, nil
}

type writer struct {
	pipe   *io.PipeWriter
	done   chan error
	remote string
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, data.ErrClosed
	}

	n, err := w.pipe.Write(p)
	if err != nil {
		return n, wrap(err, w.remote)
	}

	return n, nil
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.pipe.Close()
	return wrap(<-w.done, w.remote)
}
