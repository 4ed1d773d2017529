// Package apperr defines the failure taxonomy shared by every library
// operation. Managers return *Error values; presentation adapters map
// the Kind to a status code or a human-readable message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindDuplicate
	KindNotAvailable
	KindOverReturn
	KindPersistence
	KindIO
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindNotAvailable:
		return "not_available"
	case KindOverReturn:
		return "over_return"
	case KindPersistence:
		return "persistence_error"
	case KindIO:
		return "io_error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error matches the sentinel of its Kind.
var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicate    = &Error{Kind: KindDuplicate, Message: "already exists"}
	ErrNotAvailable = &Error{Kind: KindNotAvailable, Message: "no copies available"}
	ErrOverReturn   = &Error{Kind: KindOverReturn, Message: "all copies already returned"}
	ErrPersistence  = &Error{Kind: KindPersistence, Message: "persistence failure"}
	ErrIO           = &Error{Kind: KindIO, Message: "i/o failure"}
	ErrTimeout      = &Error{Kind: KindTimeout, Message: "operation timed out"}
)

// Error is a typed failure carrying the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(op, format string, args ...any) *Error {
	return newError(KindValidation, op, nil, format, args...)
}

func NotFound(op, format string, args ...any) *Error {
	return newError(KindNotFound, op, nil, format, args...)
}

func Duplicate(op, format string, args ...any) *Error {
	return newError(KindDuplicate, op, nil, format, args...)
}

func NotAvailable(op, format string, args ...any) *Error {
	return newError(KindNotAvailable, op, nil, format, args...)
}

func OverReturn(op, format string, args ...any) *Error {
	return newError(KindOverReturn, op, nil, format, args...)
}

func Persistence(op string, err error) *Error {
	return newError(KindPersistence, op, err, "persistence failure")
}

func IO(op string, err error) *Error {
	return newError(KindIO, op, err, "i/o failure")
}

func Timeout(op string, err error) *Error {
	return newError(KindTimeout, op, err, "operation timed out")
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithOp returns err with its Op replaced when err is an *Error without one.
func WithOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		cp := *e
		cp.Op = op
		return &cp
	}
	return err
}
