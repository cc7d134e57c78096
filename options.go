package gridfs

import (
	"fmt"
	"time"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/log"
)

// DefaultChunkSize is the buffer size streamed per request when
// reading or writing data objects.
const DefaultChunkSize = 4 * 1024 * 1024

// DefaultPoolSize is the number of concurrent sessions kept against
// the store.
const DefaultPoolSize = 4

// DefaultTimeout bounds a single remote operation. Streams are exempt
// since their lifetime belongs to the caller.
const DefaultTimeout = 30 * time.Second

type Options struct {
	// PoolSize caps the number of concurrent store sessions.
	PoolSize int

	// ChunkSize is the fixed buffer size for streaming I/O.
	ChunkSize int

	// Timeout bounds each unary remote operation. Zero disables the
	// bound.
	Timeout time.Duration

	// Root overrides the base collection the adapter is anchored to.
	// It defaults to the zone root.
	Root string

	// Protected names the top-level entries a recursive removal of
	// the root leaves untouched.
	Protected []string

	// Logger receives adapter diagnostics. Defaults to a discarder.
	Logger *log.Logger
}

type Option func(*Options) error

func newDefaultOptions() *Options {
	return &Options{
		PoolSize:  DefaultPoolSize,
		ChunkSize: DefaultChunkSize,
		Timeout:   DefaultTimeout,
		Protected: []string{"home", "trash"},
	}
}

func WithPoolSize(size int) Option {
	return func(opts *Options) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size must be at least 1", data.ErrInvalid)
		}

		opts.PoolSize = size
		return nil
	}
}

func WithChunkSize(size int) Option {
	return func(opts *Options) error {
		if size < 1 {
			return fmt.Errorf("%w: chunk size must be positive", data.ErrInvalid)
		}

		opts.ChunkSize = size
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) error {
		if timeout < 0 {
			return fmt.Errorf("%w: timeout cannot be negative", data.ErrInvalid)
		}

		opts.Timeout = timeout
		return nil
	}
}

// WithRoot anchors the adapter below a collection instead of the zone
// root, e.g. "/tempZone/home/alice".
func WithRoot(root string) Option {
	return func(opts *Options) error {
		opts.Root = root
		return nil
	}
}

// WithProtectedNames replaces the list of top-level entries spared by
// a recursive removal of the root.
func WithProtectedNames(names ...string) Option {
	return func(opts *Options) error {
		opts.Protected = names
		return nil
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(opts *Options) error {
		opts.Logger = logger
		return nil
	}
}
