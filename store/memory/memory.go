// Package memory provides an in-process grid store driver. A single
// Driver instance owns the node tree and every session is a view onto
// it, so pooled sessions observe the same data the way they would on a
// real remote store. It backs tests and embedded use.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
	"github.com/tidwall/btree"
)

func init() {
	// URL-based construction shares one process-global tree
	store.Register(New())
}

// OpHook intercepts driver operations before they touch the tree.
// Returning a non-nil error aborts the operation with that error;
// tests use this to inject connection-level failures.
type OpHook func(op, remote string) error

type Driver struct {
	mu sync.RWMutex

	// Ordered remote path → node index for prefix scans
	nodes *btree.Map[string, *node]

	// Credential every Connect must present; empty accepts anything
	credential string

	hook OpHook
}

type Option func(*Driver)

func New(opts ...Option) *Driver {
	d := &Driver{
		nodes: btree.NewMap[string, *node](0),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// WithCredential makes Connect reject sessions presenting a different
// credential.
func WithCredential(credential string) Option {
	return func(d *Driver) {
		d.credential = credential
	}
}

// WithHook installs an operation interceptor at construction time.
func WithHook(hook OpHook) Option {
	return func(d *Driver) {
		d.hook = hook
	}
}

// SetHook swaps the operation interceptor at runtime.
func (d *Driver) SetHook(hook OpHook) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hook = hook
}

func (d *Driver) Name() string {
	return "memory"
}

func (d *Driver) Connect(ctx context.Context, cfg store.Config) (store.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.intercept("connect", ""); err != nil {
		return nil, err
	}

	if cfg.Zone == "" {
		return nil, store.NewError(store.CodeInvalidName, "", nil)
	}
	if d.credential != "" && cfg.Credential != d.credential {
		return nil, store.NewError(store.CodeAuthFailed, "", nil)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// The zone root collection exists from the first session on
	root := "/" + cfg.Zone
	if _, ok := d.nodes.Get(root); !ok {
		d.nodes.Set(root, newNode(data.KindCollection, cfg.Username))
	}

	return &Conn{driver: d, owner: cfg.Username}, nil
}

func (d *Driver) intercept(op, remote string) error {
	d.mu.RLock()
	hook := d.hook
	d.mu.RUnlock()

	if hook == nil {
		return nil
	}

	return hook(op, remote)
}

// Conn is one session view onto the shared tree.
type Conn struct {
	driver *Driver
	owner  string
	closed bool
}

func (c *Conn) guard(ctx context.Context, op, remote string) error {
	if c.closed {
		return store.NewError(store.CodeConnection, remote, nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.driver.intercept(op, remote)
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.guard(ctx, "ping", "")
}

func (c *Conn) Close(ctx context.Context) error {
	if c.closed {
		return store.NewError(store.CodeConnection, "", nil)
	}
	c.closed = true

	return nil
}

func (c *Conn) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityRangeRead,
			store.CapabilityAppend,
			store.CapabilityServerCopy,
		},
	}
}

func (c *Conn) Stat(ctx context.Context, remote string, mask data.StatMask) (*data.ObjectStat, error) {
	if err := c.guard(ctx, "stat", remote); err != nil {
		return nil, err
	}

	c.driver.mu.RLock()
	defer c.driver.mu.RUnlock()

	n, ok := c.driver.nodes.Get(remote)
	if !ok {
		return nil, store.NewError(store.CodeNotFound, remote, nil)
	}

	return n.stat(remote, mask), nil
}

func (c *Conn) CreateCollection(ctx context.Context, remote string) error {
	if err := c.guard(ctx, "create-collection", remote); err != nil {
		return err
	}

	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()

	if _, ok := c.driver.nodes.Get(remote); ok {
		return store.NewError(store.CodeExists, remote, nil)
	}
	if err := c.driver.checkParentUnsafe(remote); err != nil {
		return err
	}

	c.driver.nodes.Set(remote, newNode(data.KindCollection, c.owner))

	return nil
}

func (c *Conn) ListCollection(ctx context.Context, remote string) ([]*data.ObjectStat, error) {
	if err := c.guard(ctx, "list-collection", remote); err != nil {
		return nil, err
	}

	c.driver.mu.RLock()
	defer c.driver.mu.RUnlock()

	n, ok := c.driver.nodes.Get(remote)
	if !ok {
		return nil, store.NewError(store.CodeNotFound, remote, nil)
	}
	if n.kind != data.KindCollection {
		return nil, store.NewError(store.CodeNotCollection, remote, nil)
	}

	var stats []*data.ObjectStat
	c.driver.scanChildrenUnsafe(remote, func(child string, cn *node) bool {
		stats = append(stats, cn.stat(child, data.StatDefault))
		return true
	})

	return stats, nil
}

func (c *Conn) RemoveCollection(ctx context.Context, remote string) error {
	if err := c.guard(ctx, "remove-collection", remote); err != nil {
		return err
	}

	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()

	n, ok := c.driver.nodes.Get(remote)
	if !ok {
		return store.NewError(store.CodeNotFound, remote, nil)
	}
	if n.kind != data.KindCollection {
		return store.NewError(store.CodeNotCollection, remote, nil)
	}

	empty := true
	c.driver.scanChildrenUnsafe(remote, func(string, *node) bool {
		empty = false
		return false
	})
	if !empty {
		return store.NewError(store.CodeNotEmpty, remote, nil)
	}

	c.driver.nodes.Delete(remote)

	return nil
}

func (c *Conn) OpenRead(ctx context.Context, remote string, offset int64) (store.Reader, error) {
	if err := c.guard(ctx, "open-read", remote); err != nil {
		return nil, err
	}

	c.driver.mu.RLock()
	defer c.driver.mu.RUnlock()

	n, ok := c.driver.nodes.Get(remote)
	if !ok {
		return nil, store.NewError(store.CodeNotFound, remote, nil)
	}
	if n.kind != data.KindDataObject {
		return nil, store.NewError(store.CodeIsCollection, remote, nil)
	}

	content := n.content
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}

	// Committed content slices are never mutated in place, so the
	// reader can safely alias the snapshot taken here.
	return io.NopCloser(bytes.NewReader(content[offset:])), nil
}

func (c *Conn) OpenWrite(ctx context.Context, remote string, mode store.WriteMode) (store.Writer, error) {
	if err := c.guard(ctx, "open-write", remote); err != nil {
		return nil, err
	}

	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()

	if err := c.driver.checkParentUnsafe(remote); err != nil {
		return nil, err
	}

	var initial []byte
	if n, ok := c.driver.nodes.Get(remote); ok {
		if n.kind != data.KindDataObject {
			return nil, store.NewError(store.CodeIsCollection, remote, nil)
		}
		if mode == store.WriteAppend {
			initial = append(initial, n.content...)
		}
	}

	return &writer{conn: c, remote: remote, buf: initial}, nil
}

func (c *Conn) RemoveObject(ctx context.Context, remote string) error {
	if err := c.guard(ctx, "remove-object", remote); err != nil {
		return err
	}

	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()

	n, ok := c.driver.nodes.Get(remote)
	if !ok {
		return store.NewError(store.CodeNotFound, remote, nil)
	}
	if n.kind != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, remote, nil)
	}

	c.driver.nodes.Delete(remote)

	return nil
}

func (c *Conn) Rename(ctx context.Context, oldRemote, newRemote string) error {
	if err := c.guard(ctx, "rename", oldRemote); err != nil {
		return err
	}

	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()

	return c.driver.renameUnsafe(oldRemote, newRemote)
}

func (c *Conn) Copy(ctx context.Context, srcRemote, dstRemote string) error {
	if err := c.guard(ctx, "copy", srcRemote); err != nil {
		return err
	}

	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()

	src, ok := c.driver.nodes.Get(srcRemote)
	if !ok {
		return store.NewError(store.CodeNotFound, srcRemote, nil)
	}
	if src.kind != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, srcRemote, nil)
	}
	if err := c.driver.checkParentUnsafe(dstRemote); err != nil {
		return err
	}
	if dst, ok := c.driver.nodes.Get(dstRemote); ok && dst.kind != data.KindDataObject {
		return store.NewError(store.CodeIsCollection, dstRemote, nil)
	}

	copied := newNode(data.KindDataObject, c.owner)
	copied.content = append([]byte(nil), src.content...)
	c.driver.nodes.Set(dstRemote, copied)

	return nil
}

// writer buffers a transfer and commits it as one visibility change on
// Close, the way a remote transfer handle would.
type writer struct {
	conn   *Conn
	remote string
	buf    []byte
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, store.NewError(store.CodeConnection, w.remote, nil)
	}

	w.buf = append(w.buf, p...)

	return len(p), nil
}

func (w *writer) Close() error {
	if w.closed {
		return store.NewError(store.CodeConnection, w.remote, nil)
	}
	w.closed = true

	d := w.conn.driver
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.commitUnsafe(w.remote, w.buf, w.conn.owner)
}
