package consul

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

// head resolves a remote path. Data objects live under the bare key,
// collections under the slash-suffixed marker; trees imported by
// other tooling may lack markers, so children alone also count.
func (c *Conn) head(ctx context.Context, remote string) (*api.KVPair, data.NodeKind, error) {
	pair, _, err := c.kv.Get(objectKey(remote), nil)
	if err != nil {
		return nil, 0, wrap(err, remote)
	}
	if pair != nil {
		return pair, data.KindDataObject, nil
	}

	marker, _, err := c.kv.Get(markerKey(remote), nil)
	if err != nil {
		return nil, 0, wrap(err, remote)
	}
	if marker != nil {
		return marker, data.KindCollection, nil
	}

	keys, _, err := c.kv.Keys(markerKey(remote), "", nil)
	if err != nil {
		return nil, 0, wrap(err, remote)
	}
	if len(keys) > 0 {
		return nil, data.KindCollection, nil
	}

	return nil, 0, store.NewError(store.CodeNotFound, remote, errors.New("node does not exist"))
}

func (c *Conn) requireCollection(ctx context.Context, remote string) error {
	_, kind, err := c.head(ctx, remote)
	if err != nil {
		return err
	}
	if kind != data.KindCollection {
		return store.NewError(store.CodeNotCollection, remote, errors.New("not a collection"))
	}

	return nil
}

func (c *Conn) Stat(ctx context.Context, remote string, mask data.StatMask) (*data.ObjectStat, error) {
	pair, kind, err := c.head(ctx, remote)
	if err != nil {
		return nil, err
	}

	stat := &data.ObjectStat{
		Path:      remote,
		Kind:      kind,
		Populated: mask,
	}
	if mask.Has(data.StatSize) && kind == data.KindDataObject {
		stat.Size = int64(len(pair.Value))
	}
	if mask.Has(data.StatTimes) && pair != nil {
		stat.CreateTime = indexTime(pair.CreateIndex)
		stat.ModifyTime = indexTime(pair.ModifyIndex)
	}
	if mask.Has(data.StatChecksum) && kind == data.KindDataObject {
		sum := md5.Sum(pair.Value)
		stat.Checksum = hex.EncodeToString(sum[:])
	}

	return stat, nil
}

func (c *Conn) CreateCollection(ctx context.Context, remote string) error {
	parent := parentOf(remote)
	if parent != "" {
		if err := c.requireCollection(ctx, parent); err != nil {
			return err
		}
	}

	if _, _, err := c.head(ctx, remote); err == nil {
		return store.NewError(store.CodeExists, remote, errors.New("node already exists"))
	} else if !store.IsCode(err, store.CodeNotFound) {
		return err
	}

	if _, err := c.kv.Put(&api.KVPair{Key: markerKey(remote)}, nil); err != nil {
		return wrap(err, remote)
	}

	return nil
}

func (c *Conn) ListCollection(ctx context.Context, remote string) ([]*data.ObjectStat, error) {
	if err := c.requireCollection(ctx, remote); err != nil {
		return nil, err
	}

	prefix := markerKey(remote)
	keys, _, err := c.kv.Keys(prefix, "/", nil)
	if err != nil {
		return nil, wrap(err, remote)
	}

	var stats []*data.ObjectStat
	for _, key := range keys {
		if key == prefix {
			continue
		}

		if strings.HasSuffix(key, "/") {
			stat := &data.ObjectStat{
				Path:      "/" + strings.TrimSuffix(key, "/"),
				Kind:      data.KindCollection,
				Populated: data.StatDefault,
			}
			if marker, _, err := c.kv.Get(key, nil); err == nil && marker != nil {
				stat.CreateTime = indexTime(marker.CreateIndex)
				stat.ModifyTime = indexTime(marker.ModifyIndex)
			}

			stats = append(stats, stat)
			continue
		}

		pair, _, err := c.kv.Get(key, nil)
		if err != nil {
			return nil, wrap(err, remote)
		}
		if pair == nil {
			continue
		}

		stats = append(stats, &data.ObjectStat{
			Path:       "/" + key,
			Kind:       data.KindDataObject,
			Size:       int64(len(pair.Value)),
			CreateTime: indexTime(pair.CreateIndex),
			ModifyTime: indexTime(pair.ModifyIndex),
			Populated:  data.StatDefault,
		})
	}

	return stats, nil
}

func (c *Conn) RemoveCollection(ctx context.Context, remote string) error {
	if err := c.requireCollection(ctx, remote); err != nil {
		return err
	}

	prefix := markerKey(remote)
	keys, _, err := c.kv.Keys(prefix, "/", nil)
	if err != nil {
		return wrap(err, remote)
	}
	for _, key := range keys {
		if key != prefix {
			return store.NewError(store.CodeNotEmpty, remote, errors.New("collection is not empty"))
		}
	}

	if _, err := c.kv.Delete(prefix, nil); err != nil {
		return wrap(err, remote)
	}

	return nil
}

func (c *Conn) RemoveObject(ctx context.Context, remote string) error {
	_, kind, err := c.head(ctx, remote)
	if err != nil {
		return err
	}
	if kind != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	if _, err := c.kv.Delete(objectKey(remote), nil); err != nil {
		return wrap(err, remote)
	}

	return nil
}

func (c *Conn) Rename(ctx context.Context, oldRemote, newRemote string) error {
	pair, kind, err := c.head(ctx, oldRemote)
	if err != nil {
		return err
	}

	parent := parentOf(newRemote)
	if parent != "" {
		if err := c.requireCollection(ctx, parent); err != nil {
			return err
		}
	}

	if kind == data.KindDataObject {
		if _, dstKind, err := c.head(ctx, newRemote); err == nil && dstKind == data.KindCollection {
			return store.NewError(store.CodeIsCollection, newRemote, errors.New("destination is a collection"))
		} else if err != nil && !store.IsCode(err, store.CodeNotFound) {
			return err
		}

		if _, err := c.kv.Put(&api.KVPair{Key: objectKey(newRemote), Value: pair.Value}, nil); err != nil {
			return wrap(err, oldRemote)
		}
		if _, err := c.kv.Delete(objectKey(oldRemote), nil); err != nil {
			return wrap(err, oldRemote)
		}

		return nil
	}

	if _, _, err := c.head(ctx, newRemote); err == nil {
		return store.NewError(store.CodeExists, newRemote, errors.New("destination already exists"))
	} else if !store.IsCode(err, store.CodeNotFound) {
		return err
	}

	srcPrefix := markerKey(oldRemote)
	dstPrefix := markerKey(newRemote)

	keys, _, err := c.kv.Keys(srcPrefix, "", nil)
	if err != nil {
		return wrap(err, oldRemote)
	}

	for _, key := range keys {
		moved := dstPrefix + strings.TrimPrefix(key, srcPrefix)
		entry, _, err := c.kv.Get(key, nil)
		if err != nil {
			return wrap(err, oldRemote)
		}
		if entry == nil {
			continue
		}
		if _, err := c.kv.Put(&api.KVPair{Key: moved, Value: entry.Value}, nil); err != nil {
			return wrap(err, oldRemote)
		}
	}

	if _, err := c.kv.DeleteTree(srcPrefix, nil); err != nil {
		return wrap(err, oldRemote)
	}

	return nil
}

// Copy round-trips the value through the client; the KV store has no
// server-side duplication.
func (c *Conn) Copy(ctx context.Context, srcRemote, dstRemote string) error {
	pair, kind, err := c.head(ctx, srcRemote)
	if err != nil {
		return err
	}
	if kind != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, srcRemote, errors.New("source is a collection"))
	}

	parent := parentOf(dstRemote)
	if parent != "" {
		if err := c.requireCollection(ctx, parent); err != nil {
			return err
		}
	}
	if _, dstKind, err := c.head(ctx, dstRemote); err == nil && dstKind == data.KindCollection {
		return store.NewError(store.CodeIsCollection, dstRemote, errors.New("destination is a collection"))
	} else if err != nil && !store.IsCode(err, store.CodeNotFound) {
		return err
	}

	if _, err := c.kv.Put(&api.KVPair{Key: objectKey(dstRemote), Value: pair.Value}, nil); err != nil {
		return wrap(err, srcRemote)
	}

	return nil
}
