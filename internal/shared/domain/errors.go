package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can react without matching on
// concrete error values.
type ErrorKind string

const (
	KindUnknown             ErrorKind = ""
	KindValidation          ErrorKind = "validation"
	KindNotFound            ErrorKind = "not_found"
	KindConcurrencyConflict ErrorKind = "concurrency_conflict"
	KindPersistence         ErrorKind = "persistence"
	KindPermission          ErrorKind = "permission"
)

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewKindError builds a sentinel error carrying a kind. Sentinels are
// compared with errors.Is and classified with KindOf.
func NewKindError(kind ErrorKind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap attaches a kind and operation name to err. A nil err yields nil.
func Wrap(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) ErrorKind {
	var kerr *Error
	for err != nil {
		if !errors.As(err, &kerr) {
			return KindUnknown
		}
		if kerr.Kind != KindUnknown {
			return kerr.Kind
		}
		err = kerr.Err
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

var (
	ErrNotFound            = NewKindError(KindNotFound, "not found")
	ErrConcurrencyConflict = NewKindError(KindConcurrencyConflict, "aggregate was modified concurrently")
	ErrPermissionDenied    = NewKindError(KindPermission, "permission denied")
)
