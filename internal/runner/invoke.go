package runner

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/vietddude/paramretry/internal/core/domain"
)

// PanicError is returned when a test body panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error so it is classified like a returned one.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Invoke runs body for one invocation, converting a panic into an error.
func Invoke(ctx context.Context, body Body, inv domain.Invocation) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return body(ctx, inv)
}
