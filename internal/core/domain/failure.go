package domain

import (
	"errors"
	"fmt"
)

// ErrAborted marks an attempt that was deliberately skipped rather than failed.
// Aborts are always retryable.
var ErrAborted = errors.New("attempt aborted")

// Abortf returns an abort signal carrying a reason.
func Abortf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAborted, fmt.Sprintf(format, args...))
}

// IsAbort reports whether err is, or wraps, an abort signal.
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted)
}

// Kind identifies a class of failures. A kind matches its own errors and any
// error that wraps one of them.
type Kind interface {
	Name() string
	Match(err error) bool
}
