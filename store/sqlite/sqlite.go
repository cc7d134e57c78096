// Package sqlite provides a grid store driver backed by an embedded
// SQLite database. A whole grid lives in a single file, which suits
// local development and offline test rigs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

func init() {
	store.Register(&Driver{})
}

type Driver struct{}

func (*Driver) Name() string {
	return "sqlite"
}

// Connect opens the database file named by the "path" option. Every
// session gets its own handle; WAL mode keeps concurrent sessions on
// one file serviceable.
func (*Driver) Connect(ctx context.Context, cfg store.Config) (store.Conn, error) {
	dbPath := cfg.Option("path", "")
	if dbPath == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("sqlite: missing 'path' option"))
	}
	if cfg.Zone == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("sqlite: missing zone"))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, store.NewError(store.CodeConnection, "", err)
		}
	}

	conn := &Conn{db: db, owner: cfg.Username}
	if err := conn.initSchema(ctx); err != nil {
		db.Close()
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	// The zone root collection exists from the first session on
	root := "/" + cfg.Zone
	now := time.Now().UnixMilli()
	if _, err := db.ExecContext(ctx, `
		INSERT INTO grid_nodes (path, parent, kind, size, owner, create_time, modify_time)
		VALUES (?, '', ?, 0, ?, ?, ?)
		ON CONFLICT(path) DO NOTHING`,
		root, data.KindCollection, cfg.Username, now, now); err != nil {
		db.Close()
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	return conn, nil
}

type Conn struct {
	db    *sql.DB
	owner string
}

func (c *Conn) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS grid_nodes (
		path TEXT PRIMARY KEY,
		parent TEXT NOT NULL,
		kind INTEGER NOT NULL,
		content BLOB,
		size INTEGER NOT NULL DEFAULT 0,
		owner TEXT,
		create_time INTEGER NOT NULL,
		modify_time INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_grid_nodes_parent ON grid_nodes(parent);
	`

	_, err := c.db.ExecContext(ctx, schema)
	return err
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return store.NewError(store.CodeConnection, "", err)
	}

	return nil
}

func (c *Conn) Close(ctx context.Context) error {
	if err := c.db.Close(); err != nil {
		return store.NewError(store.CodeConnection, "", err)
	}

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

// parentOf returns the parent path stored alongside each node; zone
// roots carry an empty parent.
func parentOf(remote string) string {
	idx := strings.LastIndexByte(remote, '/')
	if idx <= 0 {
		return ""
	}

	return remote[:idx]
}

// wrap converts database failures into store errors. Statement errors
// against a closed or broken handle count as connection-level.
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
	if errors.Is(err, sql.ErrNoRows) {
		return store.NewError(store.CodeNotFound, remote, err)
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return store.NewError(store.CodeConnection, remote, err)
	}

	return store.NewError(store.CodeUnknown, remote, err)
}
