package memory

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

// This file contains internal methods that walk or mutate the tree
// without acquiring locks. They MUST only be called while the caller
// holds the appropriate driver lock.

type node struct {
	kind    data.NodeKind
	content []byte
	owner   string

	createTime time.Time
	modifyTime time.Time
}

func newNode(kind data.NodeKind, owner string) *node {
	now := time.Now()

	return &node{
		kind:       kind,
		owner:      owner,
		createTime: now,
		modifyTime: now,
	}
}

func (n *node) stat(remote string, mask data.StatMask) *data.ObjectStat {
	st := &data.ObjectStat{
		Path:      remote,
		Kind:      n.kind,
		Populated: mask,
	}

	if mask.Has(data.StatSize) && n.kind == data.KindDataObject {
		st.Size = int64(len(n.content))
	}
	if mask.Has(data.StatTimes) {
		st.CreateTime = n.createTime
		st.ModifyTime = n.modifyTime
	}
	if mask.Has(data.StatChecksum) && n.kind == data.KindDataObject {
		sum := md5.Sum(n.content)
		st.Checksum = hex.EncodeToString(sum[:])
	}
	if mask.Has(data.StatOwner) {
		st.Owner = n.owner
	}

	return st
}

// checkParentUnsafe verifies the parent of remote exists and is a
// collection. MUST be called while holding a driver lock.
func (d *Driver) checkParentUnsafe(remote string) error {
	idx := strings.LastIndexByte(remote, '/')
	if idx <= 0 {
		// Zone roots have no parent to check
		return nil
	}

	parent := remote[:idx]
	n, ok := d.nodes.Get(parent)
	if !ok {
		return store.NewError(store.CodeNotFound, parent, nil)
	}
	if n.kind != data.KindCollection {
		return store.NewError(store.CodeNotCollection, parent, nil)
	}

	return nil
}

// scanChildrenUnsafe visits the immediate children of a collection.
// MUST be called while holding a driver lock.
func (d *Driver) scanChildrenUnsafe(remote string, visit func(child string, n *node) bool) {
	prefix := remote + "/"

	d.nodes.Scan(func(key string, n *node) bool {
		if !strings.HasPrefix(key, prefix) {
			// Keys sort lexically, so anything after the prefix range
			// can stop the scan once we passed the collection itself
			return key <= prefix
		}
		if strings.ContainsRune(key[len(prefix):], '/') {
			return true
		}

		return visit(key, n)
	})
}

// commitUnsafe materializes transferred content under remote,
// preserving creation time on overwrite.
// MUST be called while holding the driver write lock.
func (d *Driver) commitUnsafe(remote string, content []byte, owner string) error {
	if err := d.checkParentUnsafe(remote); err != nil {
		return err
	}

	n := newNode(data.KindDataObject, owner)
	if prev, ok := d.nodes.Get(remote); ok {
		if prev.kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, remote, nil)
		}
		n.createTime = prev.createTime
	}
	n.content = content

	d.nodes.Set(remote, n)

	return nil
}

// renameUnsafe moves a node, or a whole subtree for collections.
// MUST be called while holding the driver write lock.
func (d *Driver) renameUnsafe(oldRemote, newRemote string) error {
	src, ok := d.nodes.Get(oldRemote)
	if !ok {
		return store.NewError(store.CodeNotFound, oldRemote, nil)
	}
	if err := d.checkParentUnsafe(newRemote); err != nil {
		return err
	}

	dst, exists := d.nodes.Get(newRemote)
	if src.kind == data.KindDataObject {
		if exists && dst.kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, newRemote, nil)
		}

		d.nodes.Delete(oldRemote)
		d.nodes.Set(newRemote, src)

		return nil
	}

	if exists {
		return store.NewError(store.CodeExists, newRemote, nil)
	}

	// Collect the subtree first; mutating while scanning is undefined
	prefix := oldRemote + "/"
	moves := [][2]string{{oldRemote, newRemote}}
	d.nodes.Scan(func(key string, _ *node) bool {
		if strings.HasPrefix(key, prefix) {
			moves = append(moves, [2]string{key, newRemote + key[len(oldRemote):]})
		}
		return true
	})

	for _, move := range moves {
		n, _ := d.nodes.Get(move[0])
		d.nodes.Delete(move[0])
		d.nodes.Set(move[1], n)
	}

	return nil
}
