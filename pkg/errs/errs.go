// Package errs defines the closed set of failures returned by the peer registry
// and the membership loader.
package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	// KindAbsent means the requested entry does not exist. Not a fault.
	KindAbsent Kind = iota + 1
	// KindUnsupported means the call or its input violates a documented invariant.
	KindUnsupported
	// KindReportableBug means the registry found itself in an inconsistent state.
	KindReportableBug
	// KindIO wraps a filesystem or storage failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindUnsupported:
		return "unsupported"
	case KindReportableBug:
		return "reportable_bug"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the only error type produced by the registry packages.
// Values are immutable once constructed.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

// Kind sentinels for errors.Is. They match any error of the same kind.
var (
	ErrAbsent        = &Error{Kind: KindAbsent}
	ErrUnsupported   = &Error{Kind: KindUnsupported}
	ErrReportableBug = &Error{Kind: KindReportableBug}
	ErrIO            = &Error{Kind: KindIO}
)

func Absent(what string) *Error {
	return &Error{Kind: KindAbsent, Reason: what}
}

func Unsupported(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupported, Reason: fmt.Sprintf(format, args...)}
}

func Bug(format string, args ...any) *Error {
	return &Error{Kind: KindReportableBug, Reason: fmt.Sprintf(format, args...)}
}

// IO wraps err. A nil err yields nil so call sites can wrap unconditionally.
func IO(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == KindIO {
		return err
	}
	return &Error{Kind: KindIO, Err: err}
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAbsent:
		if e.Reason == "" {
			return "not found"
		}
		return "not found: " + e.Reason
	case KindUnsupported:
		return "unsupported: " + e.Reason
	case KindReportableBug:
		return fmt.Sprintf("unexpected bug has happened: %s. please report this bug", e.Reason)
	case KindIO:
		if e.Err == nil {
			return "io error"
		}
		return "io error: " + e.Err.Error()
	default:
		return "unknown error: " + e.Reason
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind membership against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Equal compares two errors by kind and payload. IO errors are never equal,
// not even to themselves, since the wrapped OS state has no canonical identity.
func Equal(a, b error) bool {
	var ea, eb *Error
	if !errors.As(a, &ea) || !errors.As(b, &eb) {
		return false
	}
	if ea.Kind != eb.Kind {
		return false
	}
	switch ea.Kind {
	case KindIO:
		return false
	default:
		return ea.Reason == eb.Reason
	}
}
