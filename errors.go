package gridfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
)

// OpError records a failed operation, the path it touched and the
// underlying cause. The cause is always one of the data package
// sentinels, so callers can branch with errors.Is.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(op, local string, err error) error {
	if err == nil {
		return nil
	}

	return &OpError{Op: op, Path: local, Err: err}
}

// mapStoreError folds driver errors into the adapter taxonomy. Errors
// that already speak the taxonomy pass through untouched.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	var serr *store.Error
	if !errors.As(err, &serr) {
		switch {
		case isSentinel(err):
			return err
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, context.DeadlineExceeded):
			return fmt.Errorf("%w: %v", data.ErrConnectionLost, err)
		}

		return fmt.Errorf("%w: %v", data.ErrOperationFailed, err)
	}

	switch serr.Code {
	case store.CodeNotFound:
		return data.ErrNotExist
	case store.CodeExists:
		return data.ErrExist
	case store.CodeNotEmpty:
		return data.ErrNotEmpty
	case store.CodeAccessDenied:
		return data.ErrPermission
	case store.CodeAuthFailed:
		return data.ErrAuthFailed
	case store.CodeInvalidName:
		return data.ErrInvalidPath
	case store.CodeIsCollection:
		return data.ErrIsDirectory
	case store.CodeNotCollection:
		return data.ErrNotDirectory
	case store.CodeNotSupported:
		return data.ErrNotSupported
	case store.CodeConnection:
		return fmt.Errorf("%w: %v", data.ErrConnectionLost, serr.Unwrap())
	}

	return fmt.Errorf("%w: %v", data.ErrOperationFailed, serr.Unwrap())
}

// isSentinel reports whether the error already carries one of the
// adapter sentinels, wrapped or bare.
func isSentinel(err error) bool {
	for _, sentinel := range []error{
		data.ErrInvalidPath,
		data.ErrNotExist,
		data.ErrExist,
		data.ErrIsDirectory,
		data.ErrNotDirectory,
		data.ErrNotEmpty,
		data.ErrPermission,
		data.ErrReadOnly,
		data.ErrConnectionLost,
		data.ErrAuthFailed,
		data.ErrClosed,
		data.ErrBusy,
		data.ErrInvalid,
		data.ErrNotSupported,
		data.ErrOperationFailed,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}
