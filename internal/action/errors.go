package action

import (
	"errors"
	"net/http"
	"runtime/debug"
)

// Kind classifies a handler failure and decides its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindUnknownAction
	KindMethodNotAllowed
	KindUpstream
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnknownAction:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Failure is the error half of every handler result.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

func invalid(message string) error {
	return &Failure{Kind: KindValidation, Message: message}
}

func upstream(err error) error {
	return &Failure{Kind: KindUpstream, Message: err.Error(), Err: err, Stack: debug.Stack()}
}

func internal(err error) error {
	return &Failure{Kind: KindInternal, Message: err.Error(), Err: err, Stack: debug.Stack()}
}

var errMethodNotAllowed = &Failure{Kind: KindMethodNotAllowed, Message: "Method not allowed"}

var errInvalidAction = &Failure{Kind: KindUnknownAction, Message: "Invalid action"}

// asFailure classifies err; anything unrecognised is internal.
func asFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: KindInternal, Message: err.Error(), Err: err, Stack: debug.Stack()}
}
