// Package postgres provides a grid store driver on top of PostgreSQL.
// Every session holds one dedicated server connection, so pooling
// stays the caller's concern.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

func init() {
	store.Register(&Driver{})
}

type Driver struct{}

func (*Driver) Name() string {
	return "postgres"
}

func (*Driver) Connect(ctx context.Context, cfg store.Config) (store.Conn, error) {
	if cfg.Zone == "" {
		return nil, store.NewError(store.CodeInvalidName, "", errors.New("postgres: missing zone"))
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Username, cfg.Credential,
		cfg.Option("database", "gridfs"),
		cfg.Option("sslmode", "disable"))

	pg, err := pgx.Connect(ctx, dsn)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "28") {
			return nil, store.NewError(store.CodeAuthFailed, "", err)
		}

		return nil, store.NewError(store.CodeConnection, "", err)
	}

	conn := &Conn{pg: pg, owner: cfg.Username}
	if err := conn.initSchema(ctx); err != nil {
		pg.Close(ctx)
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	root := "/" + cfg.Zone
	if _, err := pg.Exec(ctx, `
		INSERT INTO grid_nodes (path, parent, kind, size, owner, create_time, modify_time)
		VALUES ($1, '', $2, 0, $3, (extract(epoch from now()) * 1000)::bigint, (extract(epoch from now()) * 1000)::bigint)
		ON CONFLICT (path) DO NOTHING`,
		root, data.KindCollection, cfg.Username); err != nil {
		pg.Close(ctx)
		return nil, store.NewError(store.CodeConnection, "", err)
	}

	return conn, nil
}

type Conn struct {
	pg    *pgx.Conn
	owner string
}

func (c *Conn) initSchema(ctx context.Context) error {
	_, err := c.pg.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS grid_nodes (
			path TEXT PRIMARY KEY,
			parent TEXT NOT NULL,
			kind INTEGER NOT NULL,
			content BYTEA,
			size BIGINT NOT NULL DEFAULT 0,
			owner TEXT,
			create_time BIGINT NOT NULL,
			modify_time BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_grid_nodes_parent ON grid_nodes (parent)`)
	return err
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.pg.Ping(ctx); err != nil {
		return store.NewError(store.CodeConnection, "", err)
	}

	return nil
}

func (c *Conn) Close(ctx context.Context) error {
	if err := c.pg.Close(ctx); err != nil {
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

func parentOf(remote string) string {
	idx := strings.LastIndexByte(remote, '/')
	if idx <= 0 {
		return ""
	}

	return remote[:idx]
}

func (c *Conn) wrap(err error, remote string) error {
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
	if errors.Is(err, pgx.ErrNoRows) {
		return store.NewError(store.CodeNotFound, remote, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return store.NewError(store.CodeExists, remote, err)
		case strings.HasPrefix(pgErr.Code, "28"):
			return store.NewError(store.CodeAuthFailed, remote, err)
		case strings.HasPrefix(pgErr.Code, "08"):
			return store.NewError(store.CodeConnection, remote, err)
		}
	}
	if errors.Is(err, pgx.ErrTxClosed) || c.pgClosed(err) {
		return store.NewError(store.CodeConnection, remote, err)
	}

	return store.NewError(store.CodeUnknown, remote, err)
}

func (c *Conn) pgClosed(err error) bool {
	return c.pg.IsClosed() || strings.Contains(err.Error(), "conn closed")
}
