package badger

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

type nodeMeta struct {
	Kind       data.NodeKind `json:"kind"`
	Size       int64         `json:"size"`
	Owner      string        `json:"owner,omitempty"`
	CreateTime int64         `json:"create_time"`
	ModifyTime int64         `json:"modify_time"`
}

func newMeta(kind data.NodeKind, owner string) *nodeMeta {
	now := time.Now().UnixMilli()
	return &nodeMeta{
		Kind:       kind,
		Owner:      owner,
		CreateTime: now,
		ModifyTime: now,
	}
}

func getMeta(txn *badgerdb.Txn, remote string) (*nodeMeta, error) {
	item, err := txn.Get(metaKey(remote))
	if err != nil {
		return nil, err
	}

	var meta *nodeMeta
	err = item.Value(func(val []byte) error {
		decoded, err := decodeMeta(val)
		if err != nil {
			return err
		}
		meta = decoded
		return nil
	})

	return meta, err
}

// requireCollection loads a node and insists it is a collection.
func requireCollection(txn *badgerdb.Txn, remote string) error {
	meta, err := getMeta(txn, remote)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return store.NewError(store.CodeNotFound, remote, errors.New("collection does not exist"))
	}
	if err != nil {
		return err
	}
	if meta.Kind != data.KindCollection {
		return store.NewError(store.CodeNotCollection, remote, errors.New("not a collection"))
	}

	return nil
}

// firstChild reports whether any direct or nested child exists.
func firstChild(txn *badgerdb.Txn, remote string) bool {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = metaKey(remote + "/")
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	it.Rewind()
	return it.Valid()
}

func (c *Conn) Stat(ctx context.Context, remote string, mask data.StatMask) (*data.ObjectStat, error) {
	stat := &data.ObjectStat{Path: remote, Populated: mask}

	err := c.db.View(func(txn *badgerdb.Txn) error {
		meta, err := getMeta(txn, remote)
		if err != nil {
			return err
		}

		stat.Kind = meta.Kind
		if mask.Has(data.StatSize) && meta.Kind == data.KindDataObject {
			stat.Size = meta.Size
		}
		if mask.Has(data.StatTimes) {
			stat.CreateTime = time.UnixMilli(meta.CreateTime)
			stat.ModifyTime = time.UnixMilli(meta.ModifyTime)
		}
		if mask.Has(data.StatOwner) {
			stat.Owner = meta.Owner
		}
		if mask.Has(data.StatChecksum) && meta.Kind == data.KindDataObject {
			item, err := txn.Get(contentKey(remote))
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				sum := md5.Sum(nil)
				stat.Checksum = hex.EncodeToString(sum[:])
				return nil
			}
			if err != nil {
				return err
			}

			return item.Value(func(val []byte) error {
				sum := md5.Sum(val)
				stat.Checksum = hex.EncodeToString(sum[:])
				return nil
			})
		}

		return nil
	})
	if err != nil {
		return nil, wrap(err, remote)
	}

	return stat, nil
}

func (c *Conn) CreateCollection(ctx context.Context, remote string) error {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		parent := parentOf(remote)
		if parent != "" {
			if err := requireCollection(txn, parent); err != nil {
				return err
			}
		}

		if _, err := getMeta(txn, remote); err == nil {
			return store.NewError(store.CodeExists, remote, errors.New("node already exists"))
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}

		return txn.Set(metaKey(remote), encodeMeta(newMeta(data.KindCollection, c.owner)))
	})

	return wrap(err, remote)
}

func (c *Conn) ListCollection(ctx context.Context, remote string) ([]*data.ObjectStat, error) {
	var stats []*data.ObjectStat

	err := c.db.View(func(txn *badgerdb.Txn) error {
		if err := requireCollection(txn, remote); err != nil {
			return err
		}

		prefix := remote + "/"
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = metaKey(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			childPath := string(item.Key()[2:])

			// Nested descendants share the prefix; only direct
			// children belong in the listing.
			if strings.ContainsRune(childPath[len(prefix):], '/') {
				continue
			}

			stat := &data.ObjectStat{
				Path:      childPath,
				Populated: data.StatDefault | data.StatOwner,
			}
			err := item.Value(func(val []byte) error {
				meta, err := decodeMeta(val)
				if err != nil {
					return err
				}

				stat.Kind = meta.Kind
				stat.Owner = meta.Owner
				stat.CreateTime = time.UnixMilli(meta.CreateTime)
				stat.ModifyTime = time.UnixMilli(meta.ModifyTime)
				if meta.Kind == data.KindDataObject {
					stat.Size = meta.Size
				}
				return nil
			})
			if err != nil {
				return err
			}

			stats = append(stats, stat)
		}

		return nil
	})
	if err != nil {
		return nil, wrap(err, remote)
	}

	return stats, nil
}

func (c *Conn) RemoveCollection(ctx context.Context, remote string) error {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		if err := requireCollection(txn, remote); err != nil {
			return err
		}
		if firstChild(txn, remote) {
			return store.NewError(store.CodeNotEmpty, remote, errors.New("collection is not empty"))
		}

		return txn.Delete(metaKey(remote))
	})

	return wrap(err, remote)
}

func (c *Conn) RemoveObject(ctx context.Context, remote string) error {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		meta, err := getMeta(txn, remote)
		if err != nil {
			return err
		}
		if meta.Kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
		}

		if err := txn.Delete(metaKey(remote)); err != nil {
			return err
		}
		return txn.Delete(contentKey(remote))
	})

	return wrap(err, remote)
}

// Rename rewrites the subtree inside one transaction, so the move is
// atomic for every other session.
func (c *Conn) Rename(ctx context.Context, oldRemote, newRemote string) error {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		meta, err := getMeta(txn, oldRemote)
		if err != nil {
			return err
		}

		parent := parentOf(newRemote)
		if parent != "" {
			if err := requireCollection(txn, parent); err != nil {
				if store.IsCode(err, store.CodeNotFound) {
					return store.NewError(store.CodeNotFound, parent, errors.New("destination collection does not exist"))
				}
				return err
			}
		}

		dstMeta, err := getMeta(txn, newRemote)
		switch {
		case err == nil && meta.Kind == data.KindCollection:
			return store.NewError(store.CodeExists, newRemote, errors.New("destination already exists"))
		case err == nil && dstMeta.Kind == data.KindCollection:
			return store.NewError(store.CodeIsCollection, newRemote, errors.New("destination is a collection"))
		case err == nil:
			if err := txn.Delete(metaKey(newRemote)); err != nil {
				return err
			}
			if err := txn.Delete(contentKey(newRemote)); err != nil {
				return err
			}
		case !errors.Is(err, badgerdb.ErrKeyNotFound):
			return err
		}

		if meta.Kind == data.KindDataObject {
			return moveNode(txn, oldRemote, newRemote)
		}

		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = metaKey(oldRemote + "/")
		opts.PrefetchValues = false

		var subtree []string
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			subtree = append(subtree, string(it.Item().Key()[2:]))
		}
		it.Close()

		if err := moveNode(txn, oldRemote, newRemote); err != nil {
			return err
		}
		for _, childPath := range subtree {
			if err := moveNode(txn, childPath, newRemote+childPath[len(oldRemote):]); err != nil {
				return err
			}
		}

		return nil
	})

	return wrap(err, oldRemote)
}

func moveNode(txn *badgerdb.Txn, oldRemote, newRemote string) error {
	item, err := txn.Get(metaKey(oldRemote))
	if err != nil {
		return err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if err := txn.Set(metaKey(newRemote), val); err != nil {
		return err
	}
	if err := txn.Delete(metaKey(oldRemote)); err != nil {
		return err
	}

	item, err = txn.Get(contentKey(oldRemote))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	content, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	if err := txn.Set(contentKey(newRemote), content); err != nil {
		return err
	}

	return txn.Delete(contentKey(oldRemote))
}

func (c *Conn) Copy(ctx context.Context, srcRemote, dstRemote string) error {
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		meta, err := getMeta(txn, srcRemote)
		if err != nil {
			return err
		}
		if meta.Kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, srcRemote, errors.New("source is a collection"))
		}

		parent := parentOf(dstRemote)
		if parent != "" {
			if err := requireCollection(txn, parent); err != nil {
				if store.IsCode(err, store.CodeNotFound) {
					return store.NewError(store.CodeNotFound, parent, errors.New("destination collection does not exist"))
				}
				return err
			}
		}
		if dstMeta, err := getMeta(txn, dstRemote); err == nil && dstMeta.Kind == data.KindCollection {
			return store.NewError(store.CodeIsCollection, dstRemote, errors.New("destination is a collection"))
		} else if err != nil && !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}

		copied := newMeta(data.KindDataObject, c.owner)
		copied.Size = meta.Size

		var content []byte
		if item, err := txn.Get(contentKey(srcRemote)); err == nil {
			if content, err = item.ValueCopy(nil); err != nil {
				return err
			}
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(metaKey(dstRemote), encodeMeta(copied)); err != nil {
			return err
		}
		return txn.Set(contentKey(dstRemote), content)
	})

	return wrap(err, srcRemote)
}
