// Package apperr gives the HTTP and socket layers a small set of typed
// error kinds to switch on, instead of comparing error strings. There is
// no third-party typed-error library in the retrieved example pack
// shaped for this (the one candidate, cockroachdb/errors, belongs to an
// unrelated repo and targets distributed-trace error chains, not a
// closed set of HTTP-status-mapped kinds), so this stays on stdlib
// errors/fmt.Errorf with %w wrapping.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindParse
	KindAuth
	KindNotFound
	KindConflict
	KindStorage
	KindProtocol
)

type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// KindOf extracts the Kind from err, or KindUnknown if err is not (or
// does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
