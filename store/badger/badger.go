// Package badger provides a grid store driver on top of BadgerDB.
// Node metadata and content live under separate key prefixes, so
// stats never load object bytes.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func init() {
	store.Register(New())
}

func New() *Driver {
	return &Driver{dbs: make(map[string]*dbHandle)}
}

// Driver shares one database handle per directory. Badger takes an
// exclusive lock on its directory, so sessions cannot each open it.
type Driver struct {
	mu  sync.Mutex
	dbs map[string]*dbHandle
}

type dbHandle struct {
	db   *badgerdb.DB
	refs int
}

func (*Driver) Name() string {
	return "badger"
}

func (d *Driver) Connect(ctx context.Context, cfg store.Config) (store.Conn, error) {
	dbPath := cfg.Option("path", "")
	if dbPath == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("badger: missing 'path' option"))
	}
	if cfg.Zone == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("badger: missing zone"))
	}

	db, err := d.acquire(dbPath)
	if err != nil {
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	conn := &Conn{driver: d, db: db, path: dbPath, owner: cfg.Username}

	root := "/" + cfg.Zone
	err = db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(metaKey(root)); err == nil {
			return nil
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}

		return txn.Set(metaKey(root), encodeMeta(newMeta(data.KindCollection, cfg.Username)))
	})
	if err != nil {
		d.release(dbPath)
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	return conn, nil
}

func (d *Driver) acquire(dbPath string) (*badgerdb.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if handle, ok := d.dbs[dbPath]; ok {
		handle.refs++
		return handle.db, nil
	}

	db, err := badgerdb.Open(badgerdb.DefaultOptions(dbPath).WithLogger(nil))
	if err != nil {
		return nil, err
	}

	d.dbs[dbPath] = &dbHandle{db: db, refs: 1}
	return db, nil
}

func (d *Driver) release(dbPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	handle, ok := d.dbs[dbPath]
	if !ok {
		return nil
	}

	handle.refs--
	if handle.refs > 0 {
		return nil
	}

	delete(d.dbs, dbPath)
	return handle.db.Close()
}

type Conn struct {
	driver *Driver
	db     *badgerdb.DB
	path   string
	owner  string
	closed bool
}

func (c *Conn) Ping(ctx context.Context) error {
	if c.closed || c.db.IsClosed() {
		return store.NewError(store.CodeConnection, "", errors.New("database is closed"))
	}

	return nil
}

func (c *Conn) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true

	return c.driver.release(c.path)
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

// Key prefixes split the metadata and content planes.
func metaKey(remote string) []byte {
	return append([]byte("m:"), remote...)
}

func contentKey(remote string) []byte {
	return append([]byte("c:"), remote...)
}

func parentOf(remote string) string {
	idx := strings.LastIndexByte(remote, '/')
	if idx <= 0 {
		return ""
	}

	return remote[:idx]
}

func wrap(err error, remote string) error {
	if err == nil {
		return nil
	}

	var serr *store.Error
	if errors.As(err, &serr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return store.NewError(store.CodeNotFound, remote, err)
	}
	if errors.Is(err, badgerdb.ErrDBClosed) {
		return store.NewError(store.CodeConnection, remote, err)
	}

	return store.NewError(store.CodeUnknown, remote, err)
}

func decodeMeta(val []byte) (*nodeMeta, error) {
	meta := &nodeMeta{}
	if err := json.Unmarshal(val, meta); err != nil {
		return nil, err
	}

	return meta, nil
}

func encodeMeta(meta *nodeMeta) []byte {
	val, _ := json.Marshal(meta)
	return val
}
