package scanner

import (
	"errors"
	"fmt"
)

// Lifecycle errors. The controller stays usable after any of them.
var (
	ErrAlreadyRunning = errors.New("scan already running")
	ErrNotRunning     = errors.New("scan not running")
	ErrBusy           = errors.New("scan busy")
)

// Construction error categories, usable with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrIO           = errors.New("i/o error")
)

// ErrorKind categorizes construction failures.
type ErrorKind int

const (
	KindIO ErrorKind = iota
	KindNotFound
	KindInvalidInput
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidInput:
		return "InvalidInput"
	default:
		return "IOError"
	}
}

// Error is returned when a controller cannot be constructed.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the category sentinel of the error kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindInvalidInput:
		return target == ErrInvalidInput
	default:
		return target == ErrIO
	}
}
