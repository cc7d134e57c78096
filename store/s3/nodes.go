package s3

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

// head resolves a remote path against the bucket. Data objects live
// under the bare key, collections under the slash-suffixed marker, so
// resolution takes up to two probes.
func (c *Conn) head(ctx context.Context, remote string) (minio.ObjectInfo, data.NodeKind, error) {
	info, err := c.client.StatObject(ctx, c.bucket, objectKey(remote), minio.StatObjectOptions{})
	if err == nil {
		if isMarker(info) {
			return info, data.KindCollection, nil
		}

		return info, data.KindDataObject, nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return minio.ObjectInfo{}, 0, wrap(err, remote)
	}

	info, err = c.client.StatObject(ctx, c.bucket, markerKey(remote), minio.StatObjectOptions{})
	if err == nil {
		return info, data.KindCollection, nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return minio.ObjectInfo{}, 0, wrap(err, remote)
	}

	return minio.ObjectInfo{}, 0, store.NewError(store.CodeNotFound, remote, errors.New("node does not exist"))
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

func (c *Conn) hasChildren(ctx context.Context, remote string) (bool, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefix := markerKey(remote)
	for object := range c.client.ListObjects(listCtx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return false, wrap(object.Err, remote)
		}
		if object.Key == prefix {
			continue
		}

		return true, nil
	}

	return false, nil
}

func (c *Conn) Stat(ctx context.Context, remote string, mask data.StatMask) (*data.ObjectStat, error) {
	info, kind, err := c.head(ctx, remote)
	if err != nil {
		return nil, err
	}

	stat := &data.ObjectStat{
		Path:      remote,
		Kind:      kind,
		Populated: mask,
	}
	if mask.Has(data.StatSize) && kind == data.KindDataObject {
		stat.Size = info.Size
	}
	if mask.Has(data.StatTimes) {
		// Buckets only track the last write
		stat.CreateTime = info.LastModified
		stat.ModifyTime = info.LastModified
	}
	if mask.Has(data.StatChecksum) && kind == data.KindDataObject {
		stat.Checksum = strings.Trim(info.ETag, `"`)
	}
	if mask.Has(data.StatOwner) {
		stat.Owner = info.Owner.DisplayName
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

	_, err := c.client.PutObject(ctx, c.bucket, markerKey(remote), bytes.NewReader(nil), 0, minio.PutObjectOptions{
		ContentType: dirContentType,
	})
	return wrap(err, remote)
}

func (c *Conn) ListCollection(ctx context.Context, remote string) ([]*data.ObjectStat, error) {
	if err := c.requireCollection(ctx, remote); err != nil {
		return nil, err
	}

	prefix := markerKey(remote)
	var stats []*data.ObjectStat
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, wrap(object.Err, remote)
		}
		if object.Key == prefix {
			continue
		}

		stat := &data.ObjectStat{
			Path:       "/" + strings.TrimSuffix(object.Key, "/"),
			Kind:       data.KindDataObject,
			CreateTime: object.LastModified,
			ModifyTime: object.LastModified,
			Populated:  data.StatDefault,
		}
		if strings.HasSuffix(object.Key, "/") {
			stat.Kind = data.KindCollection
		} else {
			stat.Size = object.Size
		}

		stats = append(stats, stat)
	}

	return stats, nil
}

func (c *Conn) RemoveCollection(ctx context.Context, remote string) error {
	if err := c.requireCollection(ctx, remote); err != nil {
		return err
	}

	children, err := c.hasChildren(ctx, remote)
	if err != nil {
		return err
	}
	if children {
		return store.NewError(store.CodeNotEmpty, remote, errors.New("collection is not empty"))
	}

	err = c.client.RemoveObject(ctx, c.bucket, markerKey(remote), minio.RemoveObjectOptions{})
	return wrap(err, remote)
}

func (c *Conn) RemoveObject(ctx context.Context, remote string) error {
	_, kind, err := c.head(ctx, remote)
	if err != nil {
		return err
	}
	if kind != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, remote, errors.New("not a data object"))
	}

	err = c.client.RemoveObject(ctx, c.bucket, objectKey(remote), minio.RemoveObjectOptions{})
	return wrap(err, remote)
}

// Rename cannot move keys in place; every entry is copied server side
// and the source removed afterwards.
func (c *Conn) Rename(ctx context.Context, oldRemote, newRemote string) error {
	_, kind, err := c.head(ctx, oldRemote)
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

		if err := c.copyKey(ctx, objectKey(oldRemote), objectKey(newRemote)); err != nil {
			return wrap(err, oldRemote)
		}

		err := c.client.RemoveObject(ctx, c.bucket, objectKey(oldRemote), minio.RemoveObjectOptions{})
		return wrap(err, oldRemote)
	}

	if _, _, err := c.head(ctx, newRemote); err == nil {
		return store.NewError(store.CodeExists, newRemote, errors.New("destination already exists"))
	} else if !store.IsCode(err, store.CodeNotFound) {
		return err
	}

	srcPrefix := markerKey(oldRemote)
	dstPrefix := markerKey(newRemote)

	var keys []string
	for object := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    srcPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return wrap(object.Err, oldRemote)
		}
		keys = append(keys, object.Key)
	}

	for _, key := range keys {
		if err := c.copyKey(ctx, key, dstPrefix+strings.TrimPrefix(key, srcPrefix)); err != nil {
			return wrap(err, oldRemote)
		}
	}
	for _, key := range keys {
		if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return wrap(err, oldRemote)
		}
	}

	return nil
}

func (c *Conn) Copy(ctx context.Context, srcRemote, dstRemote string) error {
	_, kind, err := c.head(ctx, srcRemote)
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

	return wrap(c.copyKey(ctx, objectKey(srcRemote), objectKey(dstRemote)), srcRemote)
}

func (c *Conn) copyKey(ctx context.Context, srcKey, dstKey string) error {
	_, err := c.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: c.bucket, Object: srcKey})
	return err
}
