package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindStoreFailure ErrorKind = "STORE_FAILURE"
)

var (
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrStoreFailure = &Error{Kind: KindStoreFailure}
)

// Error is the tagged error returned by circulation operations. Callers branch
// on Kind (or errors.Is against the Err* values), never on message text.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error regardless of op or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func InvalidState(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(op string, err error) error {
	return &Error{Kind: KindConflict, Op: op, Msg: "concurrent modification", Err: err}
}

func StoreFailure(op string, err error) error {
	return &Error{Kind: KindStoreFailure, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain. Untagged errors
// are reported as store failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}
