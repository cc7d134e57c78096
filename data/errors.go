package data

import (
	"errors"
	"sync"
)

// Standard gridfs errors. Drivers and the facade wrap these so callers
// can classify failures with errors.Is.
var (
	// Path resolution errors
	ErrInvalidPath = errors.New("gridfs: invalid path detected")

	// Node operation errors
	ErrNotExist     = errors.New("gridfs: no such collection or data object")
	ErrExist        = errors.New("gridfs: collection or data object already exists")
	ErrIsDirectory  = errors.New("gridfs: is a collection")
	ErrNotDirectory = errors.New("gridfs: not a collection")
	ErrNotEmpty     = errors.New("gridfs: collection not empty")
	ErrPermission   = errors.New("gridfs: permission denied")
	ErrReadOnly     = errors.New("gridfs: stream not opened for writing")

	// Session errors
	ErrConnectionLost = errors.New("gridfs: connection lost")
	ErrAuthFailed     = errors.New("gridfs: authentication failed")

	// I/O errors
	ErrClosed          = errors.New("gridfs: already closed")
	ErrBusy            = errors.New("gridfs: stream is busy")
	ErrInvalid         = errors.New("gridfs: invalid argument")
	ErrNotSupported    = errors.New("gridfs: operation not supported")
	ErrOperationFailed = errors.New("gridfs: operation failed")
)

// Errors collects failures from batch operations, such as recursive
// collection removal, so every failed sub-path is reported instead of
// only the first one.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.errors)
}

// Errors returns all collected failures joined into a single error,
// or nil when nothing was added.
func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
