// Package store defines the session protocol boundary between the
// filesystem adapter and a remote collection/data-object store.
// Drivers implement this boundary for one concrete store each; the
// adapter never sees anything driver-specific besides these types.
package store

import (
	"context"
	"io"

	"github.com/mwantia/gridfs/data"
)

// Config carries the connection parameters shared by all drivers.
// Driver-specific settings travel in Options.
type Config struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Zone       string `json:"zone"`
	Username   string `json:"username"`
	Credential string `json:"-"`

	// Driver-specific settings (bucket names, database names, ...)
	Options map[string]string `json:"options,omitempty"`
}

// Option returns the driver-specific setting for key, or fallback when
// the key is absent or empty.
func (c Config) Option(key, fallback string) string {
	if v, ok := c.Options[key]; ok && v != "" {
		return v
	}

	return fallback
}

// Driver connects to one kind of remote store.
type Driver interface {
	// Name returns the identifier name defined for this driver.
	Name() string

	// Connect dials and authenticates a new stateful session.
	// Authentication rejections must carry CodeAuthFailed.
	Connect(ctx context.Context, cfg Config) (Conn, error)
}

// Conn is a single authenticated session to the remote store. It owns
// server-side resources such as open transfer handles for its lifetime.
// A Conn must not be used by two operations concurrently; the session
// manager guarantees exclusive checkout.
type Conn interface {
	// Ping verifies the session is still serviceable.
	Ping(ctx context.Context) error

	// Close releases the session and every server-side resource it owns.
	Close(ctx context.Context) error

	// GetCapabilities returns the optional features of this store.
	GetCapabilities() *Capabilities

	// Stat describes the node at the given remote path. Only the field
	// groups requested by mask need to be populated.
	Stat(ctx context.Context, remote string, mask data.StatMask) (*data.ObjectStat, error)

	// CreateCollection creates an empty collection.
	// The parent collection must already exist.
	CreateCollection(ctx context.Context, remote string) error

	// ListCollection returns the immediate children of a collection,
	// with basic fields plus size and times populated.
	ListCollection(ctx context.Context, remote string) ([]*data.ObjectStat, error)

	// RemoveCollection removes an empty collection.
	RemoveCollection(ctx context.Context, remote string) error

	// OpenRead starts a sequential read of a data object at offset.
	// Offsets beyond zero require CapabilityRangeRead.
	OpenRead(ctx context.Context, remote string, offset int64) (Reader, error)

	// OpenWrite starts a transfer into a data object. WriteCreate
	// replaces any existing content; WriteAppend extends it and
	// requires CapabilityAppend.
	OpenWrite(ctx context.Context, remote string, mode WriteMode) (Writer, error)

	// RemoveObject deletes a data object.
	RemoveObject(ctx context.Context, remote string) error

	// Rename moves a node to a new remote path, replacing an existing
	// data object at the target. Collection targets must not exist.
	Rename(ctx context.Context, oldRemote, newRemote string) error

	// Copy duplicates a data object on the server side without moving
	// bytes through the client. Requires CapabilityServerCopy.
	Copy(ctx context.Context, srcRemote, dstRemote string) error
}

// Reader is a remote transfer handle for sequential reads.
type Reader interface {
	io.Reader
	io.Closer
}

// Writer is a remote transfer handle for sequential writes. Content
// becomes visible under the target name once Close returns nil.
type Writer interface {
	io.Writer
	io.Closer
}

// WriteMode selects how OpenWrite treats existing content.
type WriteMode int

const (
	// WriteCreate truncates or creates the target object.
	WriteCreate WriteMode = iota
	// WriteAppend extends the target object.
	WriteAppend
)
