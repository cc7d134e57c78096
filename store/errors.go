package store

import (
	"errors"
	"fmt"
)

// Code classifies a remote failure. Drivers translate their native
// error surfaces into exactly one code at this boundary; no
// driver-specific error type crosses it.
type Code int

const (
	CodeUnknown Code = iota
	CodeNotFound
	CodeExists
	CodeNotEmpty
	CodeAccessDenied
	CodeAuthFailed
	CodeInvalidName
	CodeIsCollection
	CodeNotCollection
	CodeNotSupported
	CodeConnection
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not-found"
	case CodeExists:
		return "exists"
	case CodeNotEmpty:
		return "not-empty"
	case CodeAccessDenied:
		return "access-denied"
	case CodeAuthFailed:
		return "auth-failed"
	case CodeInvalidName:
		return "invalid-name"
	case CodeIsCollection:
		return "is-collection"
	case CodeNotCollection:
		return "not-collection"
	case CodeNotSupported:
		return "not-supported"
	case CodeConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// Error is the uniform failure type crossing the store boundary.
type Error struct {
	Code Code
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("store: %s", e.Code)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a store error; err may be nil when the native error
// adds nothing beyond the code.
func NewError(code Code, path string, err error) *Error {
	return &Error{
		Code: code,
		Path: path,
		Err:  err,
	}
}

// AsError extracts a store error from a chain.
func AsError(err error) (*Error, bool) {
	var serr *Error
	if errors.As(err, &serr) {
		return serr, true
	}

	return nil, false
}

// IsCode checks the chain for a store error with the given code.
func IsCode(err error, code Code) bool {
	if serr, ok := AsError(err); ok {
		return serr.Code == code
	}

	return false
}

// IsConnection reports whether the failure is connection-level,
// as opposed to a store-level rejection such as not-found.
func IsConnection(err error) bool {
	return IsCode(err, CodeConnection)
}
