package postgres

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func (c *Conn) OpenRead(ctx context.Context, remote string, offset int64) (store.Reader, error) {
	if offset < 0 {
		return nil, store.NewError(store.CodeInvalidName, remote, errors.New("negative read offset"))
	}

	var (
		kind int
		size int64
	)
	err := c.pg.QueryRow(ctx, `SELECT kind, size FROM grid_nodes WHERE path = $1`, remote).Scan(&kind, &size)
	if err != nil {
		return nil, c.wrap(err, remote)
	}
	if data.NodeKind(kind) != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	return &reader{
		conn:   c,
		ctx:    ctx,
		remote: remote,
		pos:    offset,
		size:   size,
	}, nil
}

type reader struct {
	conn   *Conn
	ctx    context.Context
	remote string
	pos    int64
	size   int64
	closed bool
}

func (r *reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, data.ErrClosed
	}
	if r.pos >= r.size || len(p) == 0 {
		return 0, io.EOF
	}

	var chunk []byte
	err := r.conn.pg.QueryRow(r.ctx, `
		SELECT substring(content from $1::int for $2::int) FROM grid_nodes WHERE path = $3`,
		r.pos+1, len(p), r.remote).Scan(&chunk)
	if err != nil {
		return 0, r.conn.wrap(err, r.remote)
	}
	if len(chunk) == 0 {
		return 0, io.EOF
	}

	n := copy(p, chunk)
	r.pos += int64(n)
	return n, nil
}

func (r *reader) Close() error {
	r.closed = true
	return nil
}

func (c *Conn) OpenWrite(ctx context.Context, remote string, mode store.WriteMode) (store.Writer, error) {
	parent := parentOf(remote)
	if parent != "" {
		var parentKind int
		err := c.pg.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, parent).Scan(&parentKind)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.NewError(store.CodeNotFound, parent, errors.New("parent collection does not exist"))
		}
		if err != nil {
			return nil, c.wrap(err, remote)
		}
		if data.NodeKind(parentKind) != data.KindCollection {
			return nil, store.NewError(store.CodeNotCollection, parent, errors.New("parent is a data object"))
		}
	}

	var kind int
	err := c.pg.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, remote).Scan(&kind)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, c.wrap(err, remote)
	}
	if err == nil && data.NodeKind(kind) != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	now := time.Now().UnixMilli()
	switch {
	case mode == store.WriteCreate:
		if _, err := c.pg.Exec(ctx, `
			INSERT INTO grid_nodes (path, parent, kind, content, size, owner, create_time, modify_time)
			VALUES ($1, $2, $3, ''::bytea, 0, $4, $5, $5)
			ON CONFLICT (path) DO UPDATE SET
				content = ''::bytea,
				size = 0,
				modify_time = EXCLUDED.modify_time`,
			remote, parent, data.KindDataObject, c.owner, now); err != nil {
			return nil, c.wrap(err, remote)
		}
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := c.pg.Exec(ctx, `
			INSERT INTO grid_nodes (path, parent, kind, content, size, owner, create_time, modify_time)
			VALUES ($1, $2, $3, ''::bytea, 0, $4, $5, $5)`,
			remote, parent, data.KindDataObject, c.owner, now); err != nil {
			return nil, c.wrap(err, remote)
		}
	}

	return &writer{conn: c, ctx: ctx, remote: remote}, nil
}

type writer struct {
	conn   *Conn
	ctx    context.Context
	remote string
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, data.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	if _, err := w.conn.pg.Exec(w.ctx, `
		UPDATE grid_nodes SET
			content = COALESCE(content, ''::bytea) || $1,
			size = size + $2,
			modify_time = $3
		WHERE path = $4`,
		p, len(p), time.Now().UnixMilli(), w.remote); err != nil {
		return 0, w.conn.wrap(err, w.remote)
	}

	return len(p), nil
}

func (w *writer) Close() error {
	w.closed = true
	return nil
}
