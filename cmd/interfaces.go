// Package cmd provides a small shell-style command layer over the
// filesystem adapter. Commands are registered by name, parse their
// own flags and execute against the API surface, which keeps them
// testable against fakes.
package cmd

import (
	"context"
	"io"

	"github.com/mwantia/gridfs/data"
)

// API is the slice of the filesystem surface commands operate on.
type API interface {
	// StatMetadata looks up a single node with the given field mask.
	StatMetadata(ctx context.Context, path string, mask data.StatMask) (*data.ObjectInfo, error)

	// Exists reports whether a node of either kind sits at path.
	Exists(ctx context.Context, path string) (bool, error)

	// IsDirectory reports whether path names a collection.
	IsDirectory(ctx context.Context, path string) (bool, error)

	// ReadDirectory returns the metadata of a collection's children.
	ReadDirectory(ctx context.Context, path string) ([]*data.ObjectInfo, error)

	// CreateDirectory creates a single collection.
	CreateDirectory(ctx context.Context, path string) error

	// CreateDirectoryAll creates a collection and its missing ancestors.
	CreateDirectoryAll(ctx context.Context, path string) error

	// RemoveDirectory removes a collection, recursively when asked.
	RemoveDirectory(ctx context.Context, path string, recursive bool) error

	// UnlinkFile removes a single data object.
	UnlinkFile(ctx context.Context, path string) error

	// MoveFile renames a data object.
	MoveFile(ctx context.Context, src, dst string, overwrite bool) error

	// MoveDirectory renames a collection and its subtree.
	MoveDirectory(ctx context.Context, src, dst string) error

	// CopyFile duplicates a data object.
	CopyFile(ctx context.Context, src, dst string, overwrite bool) error

	// ReadFile returns the whole content of a data object.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces the content of a data object.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Command is one executable verb of the command layer.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls [-l] [path]")
	Usage() string

	// Execute runs the command with parsed arguments, writing output
	// to writer. Returns the exit code (0 = success).
	Execute(ctx context.Context, api API, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (may be nil)
	GetFlags() *CommandFlagSet
}
