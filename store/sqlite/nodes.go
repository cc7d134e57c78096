package sqlite

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func (c *Conn) Stat(ctx context.Context, remote string, mask data.StatMask) (*data.ObjectStat, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT kind, size, create_time, modify_time, owner
		FROM grid_nodes WHERE path = ?`, remote)

	var (
		kind                   int
		size, created, updated int64
		owner                  sql.NullString
	)
	if err := row.Scan(&kind, &size, &created, &updated, &owner); err != nil {
		return nil, wrap(err, remote)
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
	if mask.Has(data.StatOwner) && owner.Valid {
		stat.Owner = owner.String
	}
	if mask.Has(data.StatChecksum) && stat.Kind == data.KindDataObject {
		// No digest function in the embedded engine, so the content is
		// pulled once and hashed here.
		var content []byte
		row := c.db.QueryRowContext(ctx, `SELECT content FROM grid_nodes WHERE path = ?`, remote)
		if err := row.Scan(&content); err != nil {
			return nil, wrap(err, remote)
		}

		sum := md5.Sum(content)
		stat.Checksum = hex.EncodeToString(sum[:])
	}

	return stat, nil
}

func (c *Conn) CreateCollection(ctx context.Context, remote string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, remote)
	}
	defer tx.Rollback()

	parent := parentOf(remote)
	if parent != "" {
		var kind int
		err := tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, parent).Scan(&kind)
		if errors.Is(err, sql.ErrNoRows) {
			return store.NewError(store.CodeNotFound, parent, errors.New("parent collection does not exist"))
		}
		if err != nil {
			return wrap(err, remote)
		}
		if data.NodeKind(kind) != data.KindCollection {
			return store.NewError(store.CodeNotCollection, parent, errors.New("parent is a data object"))
		}
	}

	var existing int
	err = tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, remote).Scan(&existing)
	if err == nil {
		return store.NewError(store.CodeExists, remote, errors.New("node already exists"))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return wrap(err, remote)
	}

	now := time.Now().UnixMilli()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO grid_nodes (path, parent, kind, size, owner, create_time, modify_time)
		VALUES (?, ?, ?, 0, ?, ?, ?)`,
		remote, parent, data.KindCollection, c.owner, now, now); err != nil {
		return wrap(err, remote)
	}

	return wrap(tx.Commit(), remote)
}

func (c *Conn) ListCollection(ctx context.Context, remote string) ([]*data.ObjectStat, error) {
	var kind int
	err := c.db.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, remote).Scan(&kind)
	if err != nil {
		return nil, wrap(err, remote)
	}
	if data.NodeKind(kind) != data.KindCollection {
		return nil, store.NewError(store.CodeNotCollection, remote, errors.New("not a collection"))
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT path, kind, size, create_time, modify_time, owner
		FROM grid_nodes WHERE parent = ? ORDER BY path`, remote)
	if err != nil {
		return nil, wrap(err, remote)
	}
	defer rows.Close()

	var stats []*data.ObjectStat
	for rows.Next() {
		var (
			childPath              string
			childKind              int
			size, created, updated int64
			owner                  sql.NullString
		)
		if err := rows.Scan(&childPath, &childKind, &size, &created, &updated, &owner); err != nil {
			return nil, wrap(err, remote)
		}

		stat := &data.ObjectStat{
			Path:       childPath,
			Kind:       data.NodeKind(childKind),
			CreateTime: time.UnixMilli(created),
			ModifyTime: time.UnixMilli(updated),
			Owner:      owner.String,
			Populated:  data.StatDefault | data.StatOwner,
		}
		if stat.Kind == data.KindDataObject {
			stat.Size = size
		}

		stats = append(stats, stat)
	}

	return stats, wrap(rows.Err(), remote)
}

func (c *Conn) RemoveCollection(ctx context.Context, remote string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, remote)
	}
	defer tx.Rollback()

	var kind int
	err = tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, remote).Scan(&kind)
	if err != nil {
		return wrap(err, remote)
	}
	if data.NodeKind(kind) != data.KindCollection {
		return store.NewError(store.CodeNotCollection, remote, errors.New("not a collection"))
	}

	var children int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM grid_nodes WHERE parent = ?`, remote).Scan(&children); err != nil {
		return wrap(err, remote)
	}
	if children > 0 {
		return store.NewError(store.CodeNotEmpty, remote, errors.New("collection is not empty"))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM grid_nodes WHERE path = ?`, remote); err != nil {
		return wrap(err, remote)
	}

	return wrap(tx.Commit(), remote)
}

func (c *Conn) RemoveObject(ctx context.Context, remote string) error {
	var kind int
	err := c.db.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, remote).Scan(&kind)
	if err != nil {
		return wrap(err, remote)
	}
	if data.NodeKind(kind) != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	_, err = c.db.ExecContext(ctx, `DELETE FROM grid_nodes WHERE path = ?`, remote)
	return wrap(err, remote)
}

// Rename moves a node and, for collections, its whole subtree. The
// subtree rewrite happens row by row inside one transaction.
func (c *Conn) Rename(ctx context.Context, oldRemote, newRemote string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, oldRemote)
	}
	defer tx.Rollback()

	var kind int
	err = tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, oldRemote).Scan(&kind)
	if err != nil {
		return wrap(err, oldRemote)
	}

	parent := parentOf(newRemote)
	if parent != "" {
		var parentKind int
		err := tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, parent).Scan(&parentKind)
		if errors.Is(err, sql.ErrNoRows) {
			return store.NewError(store.CodeNotFound, parent, errors.New("destination collection does not exist"))
		}
		if err != nil {
			return wrap(err, oldRemote)
		}
		if data.NodeKind(parentKind) != data.KindCollection {
			return store.NewError(store.CodeNotCollection, parent, errors.New("destination parent is a data object"))
		}
	}

	var dstKind int
	err = tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, newRemote).Scan(&dstKind)
	switch {
	case err == nil && data.NodeKind(kind) == data.KindCollection:
		return store.NewError(store.CodeExists, newRemote, errors.New("destination already exists"))
	case err == nil && data.NodeKind(dstKind) == data.KindCollection:
		return store.NewError(store.CodeIsCollection, newRemote, errors.New("destination is a collection"))
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM grid_nodes WHERE path = ?`, newRemote); err != nil {
			return wrap(err, oldRemote)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return wrap(err, oldRemote)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE grid_nodes SET path = ?, parent = ? WHERE path = ?`,
		newRemote, parent, oldRemote); err != nil {
		return wrap(err, oldRemote)
	}

	if data.NodeKind(kind) == data.KindCollection {
		rows, err := tx.QueryContext(ctx, `SELECT path FROM grid_nodes WHERE path LIKE ? ESCAPE '\'`,
			likePrefix(oldRemote)+"/%")
		if err != nil {
			return wrap(err, oldRemote)
		}

		var subtree []string
		for rows.Next() {
			var childPath string
			if err := rows.Scan(&childPath); err != nil {
				rows.Close()
				return wrap(err, oldRemote)
			}
			subtree = append(subtree, childPath)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return wrap(err, oldRemote)
		}
		rows.Close()

		for _, childPath := range subtree {
			moved := newRemote + childPath[len(oldRemote):]
			if _, err := tx.ExecContext(ctx, `UPDATE grid_nodes SET path = ?, parent = ? WHERE path = ?`,
				moved, parentOf(moved), childPath); err != nil {
				return wrap(err, oldRemote)
			}
		}
	}

	return wrap(tx.Commit(), oldRemote)
}

// Copy duplicates a data object without the bytes leaving the engine.
func (c *Conn) Copy(ctx context.Context, srcRemote, dstRemote string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, srcRemote)
	}
	defer tx.Rollback()

	var kind int
	err = tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, srcRemote).Scan(&kind)
	if err != nil {
		return wrap(err, srcRemote)
	}
	if data.NodeKind(kind) != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, srcRemote, errors.New("source is a collection"))
	}

	parent := parentOf(dstRemote)
	if parent != "" {
		var parentKind int
		err := tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, parent).Scan(&parentKind)
		if errors.Is(err, sql.ErrNoRows) {
			return store.NewError(store.CodeNotFound, parent, errors.New("destination collection does not exist"))
		}
		if err != nil {
			return wrap(err, srcRemote)
		}
		if data.NodeKind(parentKind) != data.KindCollection {
			return store.NewError(store.CodeNotCollection, parent, errors.New("destination parent is a data object"))
		}
	}

	var dstKind int
	err = tx.QueryRowContext(ctx, `SELECT kind FROM grid_nodes WHERE path = ?`, dstRemote).Scan(&dstKind)
	if err == nil && data.NodeKind(dstKind) != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, dstRemote, errors.New("destination is a collection"))
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return wrap(err, srcRemote)
	}

	now := time.Now().UnixMilli()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO grid_nodes (path, parent, kind, content, size, owner, create_time, modify_time)
		SELECT ?, ?, kind, content, size, ?, ?, ? FROM grid_nodes WHERE path = ?
		ON CONFLICT(path) DO UPDATE SET
			content = excluded.content,
			size = excluded.size,
			modify_time = excluded.modify_time`,
		dstRemote, parent, c.owner, now, now, srcRemote); err != nil {
		return wrap(err, srcRemote)
	}

	return wrap(tx.Commit(), srcRemote)
}

// likePrefix escapes LIKE wildcards so literal '%' and '_' in names
// do not widen subtree matches.
func likePrefix(remote string) string {
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
