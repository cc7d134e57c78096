package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func (c *Conn) Stat(ctx context.Context, remote string, mask data.StatMask) (*data.ObjectStat, error) {
	var (
		kind                   int
		size, created, updated int64
		owner                  string
	)
	err := c.pg.QueryRow(ctx, `
		SELECT kind, size, create_time, modify_time, COALESCE(owner, '')
		FROM grid_nodes WHERE path = $1`, remote).Scan(&kind, &size, &created, &updated, &owner)
	if err != nil {
		return nil, c.wrap(err, remote)
	}

	stat := &data.ObjectStat{
		Path:      remote,
		Kind:      data.NodeKind(kind),
		Populated: mask,
	}
	if mask.Has(data.StatSize) && stat.Kind == data.KindDataObject {
		stat.Size = size
	}
	if mask.Has(data.StatTimes) {
		stat.CreateTime = time.UnixMilli(created)
		stat.ModifyTime = time.UnixMilli(updated)
	}
	if mask.Has(data.StatOwner) {
		stat.Owner = owner
	}
	if mask.Has(data.StatChecksum) && stat.Kind == data.KindDataObject {
		// Digest runs server side, the content never crosses the wire.
		var sum string
		err := c.pg.QueryRow(ctx, `
			SELECT md5(COALESCE(content, ''::bytea)) FROM grid_nodes WHERE path = $1`, remote).Scan(&sum)
		if err != nil {
			return nil, c.wrap(err, remote)
		}
		stat.Checksum = sum
	}

	return stat, nil
}

func (c *Conn) CreateCollection(ctx context.Context, remote string) error {
	tx, err := c.pg.Begin(ctx)
	if err != nil {
		return c.wrap(err, remote)
	}
	defer tx.Rollback(ctx)

	parent := parentOf(remote)
	if parent != "" {
		var kind int
		err := tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, parent).Scan(&kind)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.NewError(store.CodeNotFound, parent, errors.New("parent collection does not exist"))
		}
		if err != nil {
			return c.wrap(err, remote)
		}
		if data.NodeKind(kind) != data.KindCollection {
			return store.NewError(store.CodeNotCollection, parent, errors.New("parent is a data object"))
		}
	}

	var existing int
	err = tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, remote).Scan(&existing)
	if err == nil {
		return store.NewError(store.CodeExists, remote, errors.New("node already exists"))
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return c.wrap(err, remote)
	}

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(ctx, `
		INSERT INTO grid_nodes (path, parent, kind, size, owner, create_time, modify_time)
		VALUES ($1, $2, $3, 0, $4, $5, $5)`,
		remote, parent, data.KindCollection, c.owner, now); err != nil {
		return c.wrap(err, remote)
	}

	return c.wrap(tx.Commit(ctx), remote)
}

func (c *Conn) ListCollection(ctx context.Context, remote string) ([]*data.ObjectStat, error) {
	var kind int
	err := c.pg.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, remote).Scan(&kind)
	if err != nil {
		return nil, c.wrap(err, remote)
	}
	if data.NodeKind(kind) != data.KindCollection {
		return nil, store.NewError(store.CodeNotCollection, remote, errors.New("not a collection"))
	}

	rows, err := c.pg.Query(ctx, `
		SELECT path, kind, size, create_time, modify_time, COALESCE(owner, '')
		FROM grid_nodes WHERE parent = $1 ORDER BY path`, remote)
	if err != nil {
		return nil, c.wrap(err, remote)
	}
	defer rows.Close()

	var stats []*data.ObjectStat
	for rows.Next() {
		var (
			childPath              string
			childKind              int
			size, created, updated int64
			owner                  string
		)
		if err := rows.Scan(&childPath, &childKind, &size, &created, &updated, &owner); err != nil {
			return nil, c.wrap(err, remote)
		}

		stat := &data.ObjectStat{
			Path:       childPath,
			Kind:       data.NodeKind(childKind),
			CreateTime: time.UnixMilli(created),
			ModifyTime: time.UnixMilli(updated),
			Owner:      owner,
			Populated:  data.StatDefault | data.StatOwner,
		}
		if stat.Kind == data.KindDataObject {
			stat.Size = size
		}

		stats = append(stats, stat)
	}

	return stats, c.wrap(rows.Err(), remote)
}

func (c *Conn) RemoveCollection(ctx context.Context, remote string) error {
	tx, err := c.pg.Begin(ctx)
	if err != nil {
		return c.wrap(err, remote)
	}
	defer tx.Rollback(ctx)

	var kind int
	err = tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, remote).Scan(&kind)
	if err != nil {
		return c.wrap(err, remote)
	}
	if data.NodeKind(kind) != data.KindCollection {
		return store.NewError(store.CodeNotCollection, remote, errors.New("not a collection"))
	}

	var children int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM grid_nodes WHERE parent = $1`, remote).Scan(&children); err != nil {
		return c.wrap(err, remote)
	}
	if children > 0 {
		return store.NewError(store.CodeNotEmpty, remote, errors.New("collection is not empty"))
	}

	if _, err := tx.Exec(ctx, `DELETE FROM grid_nodes WHERE path = $1`, remote); err != nil {
		return c.wrap(err, remote)
	}

	return c.wrap(tx.Commit(ctx), remote)
}

func (c *Conn) RemoveObject(ctx context.Context, remote string) error {
	var kind int
	err := c.pg.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, remote).Scan(&kind)
	if err != nil {
		return c.wrap(err, remote)
	}
	if data.NodeKind(kind) != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	_, err = c.pg.Exec(ctx, `DELETE FROM grid_nodes WHERE path = $1`, remote)
	return c.wrap(err, remote)
}

func (c *Conn) Rename(ctx context.Context, oldRemote, newRemote string) error {
	tx, err := c.pg.Begin(ctx)
	if err != nil {
		return c.wrap(err, oldRemote)
	}
	defer tx.Rollback(ctx)

	var kind int
	err = tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, oldRemote).Scan(&kind)
	if err != nil {
		return c.wrap(err, oldRemote)
	}

	parent := parentOf(newRemote)
	if parent != "" {
		var parentKind int
		err := tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, parent).Scan(&parentKind)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.NewError(store.CodeNotFound, parent, errors.New("destination collection does not exist"))
		}
		if err != nil {
			return c.wrap(err, oldRemote)
		}
		if data.NodeKind(parentKind) != data.KindCollection {
			return store.NewError(store.CodeNotCollection, parent, errors.New("destination parent is a data object"))
		}
	}

	var dstKind int
	err = tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, newRemote).Scan(&dstKind)
	switch {
	case err == nil && data.NodeKind(kind) == data.KindCollection:
		return store.NewError(store.CodeExists, newRemote, errors.New("destination already exists"))
	case err == nil && data.NodeKind(dstKind) == data.KindCollection:
		return store.NewError(store.CodeIsCollection, newRemote, errors.New("destination is a collection"))
	case err == nil:
		if _, err := tx.Exec(ctx, `DELETE FROM grid_nodes WHERE path = $1`, newRemote); err != nil {
			return c.wrap(err, oldRemote)
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return c.wrap(err, oldRemote)
	}

	if _, err := tx.Exec(ctx, `UPDATE grid_nodes SET path = $1, parent = $2 WHERE path = $3`,
		newRemote, parent, oldRemote); err != nil {
		return c.wrap(err, oldRemote)
	}

	if data.NodeKind(kind) == data.KindCollection {
		// Subtree rows follow in one statement; substring math keeps
		// the parent column aligned with the rewritten path.
		if _, err := tx.Exec(ctx, `
			UPDATE grid_nodes SET
				path = $1 || substring(path from $2::int),
				parent = $1 || substring(parent from $2::int)
			WHERE path LIKE $3 || '/%'`,
			newRemote, len(oldRemote)+1, escapeLike(oldRemote)); err != nil {
			return c.wrap(err, oldRemote)
		}
	}

	return c.wrap(tx.Commit(ctx), oldRemote)
}

func (c *Conn) Copy(ctx context.Context, srcRemote, dstRemote string) error {
	tx, err := c.pg.Begin(ctx)
	if err != nil {
		return c.wrap(err, srcRemote)
	}
	defer tx.Rollback(ctx)

	var kind int
	err = tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, srcRemote).Scan(&kind)
	if err != nil {
		return c.wrap(err, srcRemote)
	}
	if data.NodeKind(kind) != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, srcRemote, errors.New("source is a collection"))
	}

	parent := parentOf(dstRemote)
	if parent != "" {
		var parentKind int
		err := tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, parent).Scan(&parentKind)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.NewError(store.CodeNotFound, parent, errors.New("destination collection does not exist"))
		}
		if err != nil {
			return c.wrap(err, srcRemote)
		}
		if data.NodeKind(parentKind) != data.KindCollection {
			return store.NewError(store.CodeNotCollection, parent, errors.New("destination parent is a data object"))
		}
	}

	var dstKind int
	err = tx.QueryRow(ctx, `SELECT kind FROM grid_nodes WHERE path = $1`, dstRemote).Scan(&dstKind)
	if err == nil && data.NodeKind(dstKind) != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, dstRemote, errors.New("destination is a collection"))
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return c.wrap(err, srcRemote)
	}

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(ctx, `
		INSERT INTO grid_nodes (path, parent, kind, content, size, owner, create_time, modify_time)
		SELECT $1, $2, kind, content, size, $3, $4, $4 FROM grid_nodes WHERE path = $5
		ON CONFLICT (path) DO UPDATE SET
			content = EXCLUDED.content,
			size = EXCLUDED.size,
			modify_time = EXCLUDED.modify_time`,
		dstRemote, parent, c.owner, now, srcRemote); err != nil {
		return c.wrap(err, srcRemote)
	}

	return c.wrap(tx.Commit(ctx), srcRemote)
}

// escapeLike guards literal LIKE wildcards inside node names.
func escapeLike(remote string) string {
	escaped := make([]byte, 0, len(remote))
	for i := 0; i < len(remote); i++ {
		switch remote[i] {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, remote[i])
	}

	return string(escaped)
}
