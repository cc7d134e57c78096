package gridfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/session"
	"github.com/mwantia/gridfs/store"
)

// StatMetadata looks up a single node and returns the fields named by
// the mask. Collections always report size zero.
func (f *FileSystem) StatMetadata(ctx context.Context, path string, mask data.StatMask) (*data.ObjectInfo, error) {
	const op = "stat"

	remote, local, err := f.resolve(path)
	if err != nil {
		return nil, opError(op, path, err)
	}

	var info *data.ObjectInfo
	err = f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		stat, err := conn.Stat(ctx, remote, mask)
		if err != nil {
			return err
		}

		info = toObjectInfo(local, stat)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// Stat is StatMetadata with the default field mask.
func (f *FileSystem) Stat(ctx context.Context, path string) (*data.ObjectInfo, error) {
	return f.StatMetadata(ctx, path, data.StatDefault)
}

// SetMetadata verifies the node exists and then reports that the
// store does not take metadata writes. The existence check keeps the
// error contract aligned with the read side.
func (f *FileSystem) SetMetadata(ctx context.Context, path string, info *data.ObjectInfo) error {
	const op = "setinfo"

	remote, local, err := f.resolve(path)
	if err != nil {
		return opError(op, path, err)
	}

	return f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		if _, err := conn.Stat(ctx, remote, data.StatBasic); err != nil {
			return err
		}

		return fmt.Errorf("%w: metadata is read-only", data.ErrNotSupported)
	})
}

// Exists reports whether a node of either kind sits at path.
func (f *FileSystem) Exists(ctx context.Context, path string) (bool, error) {
	const op = "exists"

	remote, local, err := f.resolve(path)
	if err != nil {
		return false, opError(op, path, err)
	}

	exists := false
	err = f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		_, err := conn.Stat(ctx, remote, data.StatBasic)
		if store.IsCode(err, store.CodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		exists = true
		return nil
	})

	return exists, err
}

// IsFile reports whether path names a data object. Missing paths are
// simply not files.
func (f *FileSystem) IsFile(ctx context.Context, path string) (bool, error) {
	kind, ok, err := f.kindOf(ctx, "isfile", path)
	return ok && kind == data.KindDataObject, err
}

// IsDirectory reports whether path names a collection. Missing paths
// are simply not directories.
func (f *FileSystem) IsDirectory(ctx context.Context, path string) (bool, error) {
	kind, ok, err := f.kindOf(ctx, "isdir", path)
	return ok && kind == data.KindCollection, err
}

func (f *FileSystem) kindOf(ctx context.Context, op, path string) (data.NodeKind, bool, error) {
	remote, local, err := f.resolve(path)
	if err != nil {
		return 0, false, opError(op, path, err)
	}

	var (
		kind  data.NodeKind
		found bool
	)
	err = f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		stat, err := conn.Stat(ctx, remote, data.StatBasic)
		if store.IsCode(err, store.CodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		kind = stat.Kind
		found = true
		return nil
	})

	return kind, found, err
}

// ListDirectory returns the full paths of a collection's direct
// children.
func (f *FileSystem) ListDirectory(ctx context.Context, path string) ([]string, error) {
	const op = "list"

	remote, local, err := f.resolve(path)
	if err != nil {
		return nil, opError(op, path, err)
	}

	var names []string
	err = f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		children, err := conn.ListCollection(ctx, remote)
		if err != nil {
			return err
		}

		names = make([]string, 0, len(children))
		for _, child := range children {
			if data.IsStagingPath(child.Path) {
				continue
			}
			childLocal, err := f.fromRemote(child.Path)
			if err != nil {
				continue
			}
			names = append(names, childLocal)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// ReadDirectory returns the metadata of a collection's direct
// children.
func (f *FileSystem) ReadDirectory(ctx context.Context, path string) ([]*data.ObjectInfo, error) {
	const op = "readdir"

	remote, local, err := f.resolve(path)
	if err != nil {
		return nil, opError(op, path, err)
	}

	var infos []*data.ObjectInfo
	err = f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		children, err := conn.ListCollection(ctx, remote)
		if err != nil {
			return err
		}

		infos = make([]*data.ObjectInfo, 0, len(children))
		for _, child := range children {
			if data.IsStagingPath(child.Path) {
				continue
			}
			childLocal, err := f.fromRemote(child.Path)
			if err != nil {
				continue
			}
			infos = append(infos, toObjectInfo(childLocal, child))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return infos, nil
}

// CreateDirectory creates a single collection. The parent must
// already exist.
func (f *FileSystem) CreateDirectory(ctx context.Context, path string) error {
	const op = "mkdir"

	remote, local, err := f.resolve(path)
	if err != nil {
		return opError(op, path, err)
	}
	if local == "/" {
		return opError(op, local, fmt.Errorf("%w: the root already exists", data.ErrExist))
	}

	return f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		return conn.CreateCollection(ctx, remote)
	})
}

// CreateDirectoryAll creates a collection along with any missing
// ancestors. Existing collections along the way are fine.
func (f *FileSystem) CreateDirectoryAll(ctx context.Context, path string) error {
	const op = "mkdirall"

	_, local, err := f.resolve(path)
	if err != nil {
		return opError(op, path, err)
	}
	if local == "/" {
		return nil
	}

	return f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		segments := strings.Split(local[1:], "/")
		step := f.root

		for _, segment := range segments {
			step += "/" + segment

			err := conn.CreateCollection(ctx, step)
			if err != nil && !store.IsCode(err, store.CodeExists) {
				return err
			}
		}

		return nil
	})
}

// RemoveDirectory removes a collection. Without recursive it must be
// empty. With recursive the whole subtree goes; failures on single
// entries are collected and reported together while the removal
// carries on. A recursive removal of the root empties it but keeps
// the root itself, sparing the configured protected names.
func (f *FileSystem) RemoveDirectory(ctx context.Context, path string, recursive bool) error {
	const op = "rmdir"

	remote, local, err := f.resolve(path)
	if err != nil {
		return opError(op, path, err)
	}
	if local == "/" && !recursive {
		return opError(op, local, fmt.Errorf("%w: cannot remove the adapter root", data.ErrInvalidPath))
	}

	return f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		if !recursive {
			return conn.RemoveCollection(ctx, remote)
		}

		stat, err := conn.Stat(ctx, remote, data.StatBasic)
		if err != nil {
			return err
		}
		if stat.Kind != data.KindCollection {
			return store.NewError(store.CodeNotCollection, remote, errors.New("not a collection"))
		}

		var protected map[string]bool
		if local == "/" && len(f.opts.Protected) > 0 {
			protected = make(map[string]bool, len(f.opts.Protected))
			for _, name := range f.opts.Protected {
				protected[name] = true
			}
		}

		errs := data.Errors{}
		if err := f.clearTree(ctx, conn, remote, protected, &errs); err != nil {
			return err
		}

		if local != "/" {
			if err := conn.RemoveCollection(ctx, remote); err != nil {
				if store.IsConnection(err) {
					return err
				}
				errs.Add(fmt.Errorf("%s: %w", local, mapStoreError(err)))
			}
		}

		return errs.Errors()
	})
}

// clearTree removes everything below remote, depth first. Entry
// failures are recorded and skipped; only connection loss aborts,
// since nothing after it can succeed.
func (f *FileSystem) clearTree(ctx context.Context, conn store.Conn, remote string, protected map[string]bool, errs *data.Errors) error {
	children, err := conn.ListCollection(ctx, remote)
	if err != nil {
		return err
	}

	for _, child := range children {
		childLocal, err := f.fromRemote(child.Path)
		if err != nil {
			childLocal = child.Path
		}
		if protected != nil && protected[baseName(childLocal)] {
			continue
		}

		if child.Kind == data.KindCollection {
			if err := f.clearTree(ctx, conn, child.Path, nil, errs); err != nil {
				return err
			}
			if err := conn.RemoveCollection(ctx, child.Path); err != nil {
				if store.IsConnection(err) {
					return err
				}
				errs.Add(fmt.Errorf("%s: %w", childLocal, mapStoreError(err)))
			}
			continue
		}

		if err := conn.RemoveObject(ctx, child.Path); err != nil {
			if store.IsConnection(err) {
				return err
			}
			errs.Add(fmt.Errorf("%s: %w", childLocal, mapStoreError(err)))
		}
	}

	return nil
}

// UnlinkFile removes a single data object.
func (f *FileSystem) UnlinkFile(ctx context.Context, path string) error {
	const op = "unlink"

	remote, local, err := f.resolve(path)
	if err != nil {
		return opError(op, path, err)
	}

	return f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		return conn.RemoveObject(ctx, remote)
	})
}

// MoveFile renames a data object. Without overwrite an existing
// destination fails the move; a destination collection always does.
func (f *FileSystem) MoveFile(ctx context.Context, src, dst string, overwrite bool) error {
	const op = "move"

	srcRemote, srcLocal, err := f.resolve(src)
	if err != nil {
		return opError(op, src, err)
	}
	dstRemote, _, err := f.resolve(dst)
	if err != nil {
		return opError(op, dst, err)
	}
	if srcRemote == dstRemote {
		return nil
	}

	return f.exec(ctx, op, srcLocal, func(ctx context.Context, conn store.Conn) error {
		stat, err := conn.Stat(ctx, srcRemote, data.StatBasic)
		if err != nil {
			return err
		}
		if stat.Kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, srcRemote, errors.New("not a data object"))
		}

		dstStat, err := conn.Stat(ctx, dstRemote, data.StatBasic)
		switch {
		case err == nil && dstStat.Kind == data.KindCollection:
			return store.NewError(store.CodeIsCollection, dstRemote, errors.New("destination is a collection"))
		case err == nil && !overwrite:
			return store.NewError(store.CodeExists, dstRemote, errors.New("destination already exists"))
		case err != nil && !store.IsCode(err, store.CodeNotFound):
			return err
		}

		return conn.Rename(ctx, srcRemote, dstRemote)
	})
}

// MoveDirectory renames a collection and everything below it. The
// destination must not exist.
func (f *FileSystem) MoveDirectory(ctx context.Context, src, dst string) error {
	const op = "move"

	srcRemote, srcLocal, err := f.resolve(src)
	if err != nil {
		return opError(op, src, err)
	}
	dstRemote, dstLocal, err := f.resolve(dst)
	if err != nil {
		return opError(op, dst, err)
	}
	if srcLocal == "/" {
		return opError(op, srcLocal, fmt.Errorf("%w: cannot move the adapter root", data.ErrInvalidPath))
	}
	if isPathWithin(srcLocal, dstLocal) {
		return opError(op, dstLocal, fmt.Errorf("%w: cannot move a directory below itself", data.ErrInvalidPath))
	}
	if srcRemote == dstRemote {
		return nil
	}

	return f.exec(ctx, op, srcLocal, func(ctx context.Context, conn store.Conn) error {
		stat, err := conn.Stat(ctx, srcRemote, data.StatBasic)
		if err != nil {
			return err
		}
		if stat.Kind != data.KindCollection {
			return store.NewError(store.CodeNotCollection, srcRemote, errors.New("not a collection"))
		}

		return conn.Rename(ctx, srcRemote, dstRemote)
	})
}

// CopyFile duplicates a data object, server side when the store can
// and by restreaming through the client when it cannot.
func (f *FileSystem) CopyFile(ctx context.Context, src, dst string, overwrite bool) error {
	const op = "copy"

	srcRemote, srcLocal, err := f.resolve(src)
	if err != nil {
		return opError(op, src, err)
	}
	dstRemote, _, err := f.resolve(dst)
	if err != nil {
		return opError(op, dst, err)
	}
	if srcRemote == dstRemote {
		return nil
	}

	return f.exec(ctx, op, srcLocal, func(ctx context.Context, conn store.Conn) error {
		stat, err := conn.Stat(ctx, srcRemote, data.StatBasic)
		if err != nil {
			return err
		}
		if stat.Kind != data.KindDataObject {
			return store.NewError(store.CodeIsCollection, srcRemote, errors.New("not a data object"))
		}

		dstStat, err := conn.Stat(ctx, dstRemote, data.StatBasic)
		switch {
		case err == nil && dstStat.Kind == data.KindCollection:
			return store.NewError(store.CodeIsCollection, dstRemote, errors.New("destination is a collection"))
		case err == nil && !overwrite:
			return store.NewError(store.CodeExists, dstRemote, errors.New("destination already exists"))
		case err != nil && !store.IsCode(err, store.CodeNotFound):
			return err
		}

		if conn.GetCapabilities().Contains(store.CapabilityServerCopy) {
			return conn.Copy(ctx, srcRemote, dstRemote)
		}

		return f.restreamCopy(ctx, conn, srcRemote, dstRemote)
	})
}

// restreamCopy pulls the source through the client into a staging
// object and publishes it with a rename, mirroring the write path.
func (f *FileSystem) restreamCopy(ctx context.Context, conn store.Conn, srcRemote, dstRemote string) error {
	staging := data.NewStagingPath(dstRemote)

	wc, err := conn.OpenWrite(ctx, staging, store.WriteCreate)
	if err != nil {
		return err
	}

	rc, err := conn.OpenRead(ctx, srcRemote, 0)
	if err != nil {
		wc.Close()
		f.scrapRemote(ctx, conn, staging)
		return err
	}

	_, err = io.CopyBuffer(wc, rc, make([]byte, f.opts.ChunkSize))
	rc.Close()
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.scrapRemote(ctx, conn, staging)
		return err
	}

	if err := conn.Rename(ctx, staging, dstRemote); err != nil {
		f.scrapRemote(ctx, conn, staging)
		return err
	}

	return nil
}

// scrapRemote removes a leftover staging object, best effort.
func (f *FileSystem) scrapRemote(ctx context.Context, conn store.Conn, remote string) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	if err := conn.RemoveObject(ctx, remote); err != nil && !store.IsCode(err, store.CodeNotFound) {
		f.log.Debug("Failed to remove staging object '%s': %v", remote, err)
	}
}

// OpenFile opens a data object for streaming in the given access
// mode. Streams hold their session until closed, so the pool must be
// sized for the number of concurrently open streams. Read-write
// streams are not supported.
func (f *FileSystem) OpenFile(ctx context.Context, path string, mode data.AccessMode) (Streamer, error) {
	const op = "open"

	remote, local, err := f.resolve(path)
	if err != nil {
		return nil, opError(op, path, err)
	}

	switch {
	case mode.IsReadOnly():
		var stream *readStream
		_, err := f.acquireStream(ctx, op, local, func(ctx context.Context, s *session.Session) error {
			opened, err := newReadStream(ctx, f, s, local, remote)
			if err != nil {
				return err
			}
			stream = opened
			return nil
		})
		if err != nil {
			return nil, err
		}
		return stream, nil

	case mode.IsWriteOnly():
		if !mode.HasCreate() {
			return nil, opError(op, local, fmt.Errorf("%w: write streams require the create flag", data.ErrInvalid))
		}

		var stream *writeStream
		_, err := f.acquireStream(ctx, op, local, func(ctx context.Context, s *session.Session) error {
			opened, err := newWriteStream(ctx, f, s, local, remote, mode)
			if err != nil {
				return err
			}
			stream = opened
			return nil
		})
		if err != nil {
			return nil, err
		}
		return stream, nil
	}

	return nil, opError(op, local, fmt.Errorf("%w: access mode %d is not supported", data.ErrNotSupported, mode))
}

// OpenRead opens a data object for reading from the start.
func (f *FileSystem) OpenRead(ctx context.Context, path string) (Streamer, error) {
	return f.OpenFile(ctx, path, data.AccessModeRead)
}

// OpenWrite opens a data object for writing, truncating any previous
// content once the stream is closed.
func (f *FileSystem) OpenWrite(ctx context.Context, path string) (Streamer, error) {
	return f.OpenFile(ctx, path, data.WriteTruncate)
}

// OpenAppend opens a data object for writing behind its current
// content.
func (f *FileSystem) OpenAppend(ctx context.Context, path string) (Streamer, error) {
	return f.OpenFile(ctx, path, data.WriteAppend)
}

// ReadFile returns the whole content of a data object.
func (f *FileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	stream, err := f.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(stream)
	if cerr := stream.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	return content, nil
}

// WriteFile replaces the content of a data object, creating it when
// missing.
func (f *FileSystem) WriteFile(ctx context.Context, path string, content []byte) error {
	stream, err := f.OpenWrite(ctx, path)
	if err != nil {
		return err
	}

	_, err = io.Copy(stream, bytes.NewReader(content))
	if cerr := stream.Close(); err == nil {
		err = cerr
	}

	return err
}

// Upload streams r into the data object at path.
func (f *FileSystem) Upload(ctx context.Context, path string, r io.Reader) (int64, error) {
	stream, err := f.OpenWrite(ctx, path)
	if err != nil {
		return 0, err
	}

	n, err := io.CopyBuffer(stream, r, make([]byte, f.opts.ChunkSize))
	if cerr := stream.Close(); err == nil {
		err = cerr
	}

	return n, err
}

// Download streams the data object at path into w.
func (f *FileSystem) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	stream, err := f.OpenRead(ctx, path)
	if err != nil {
		return 0, err
	}

	n, err := io.CopyBuffer(w, stream, make([]byte, f.opts.ChunkSize))
	if cerr := stream.Close(); err == nil && cerr != nil {
		err = cerr
	}

	return n, err
}

// GetSize returns the size of a data object. Collections report zero.
func (f *FileSystem) GetSize(ctx context.Context, path string) (int64, error) {
	info, err := f.StatMetadata(ctx, path, data.StatSize)
	if err != nil {
		return 0, err
	}

	return info.Size, nil
}

// IsEmpty reports whether a collection has no children or a data
// object has no content.
func (f *FileSystem) IsEmpty(ctx context.Context, path string) (bool, error) {
	const op = "empty"

	remote, local, err := f.resolve(path)
	if err != nil {
		return false, opError(op, path, err)
	}

	empty := false
	err = f.exec(ctx, op, local, func(ctx context.Context, conn store.Conn) error {
		stat, err := conn.Stat(ctx, remote, data.StatSize)
		if err != nil {
			return err
		}

		if stat.Kind == data.KindDataObject {
			empty = stat.Size == 0
			return nil
		}

		children, err := conn.ListCollection(ctx, remote)
		if err != nil {
			return err
		}

		empty = len(children) == 0
		return nil
	})

	return empty, err
}
