package handler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

type panicError struct {
	value any
	stack []byte
}

func newPanicError(value any) *panicError {
	return &panicError{value: value, stack: debug.Stack()}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.value)
}

// errorKind classifies a handler failure for logging.
func errorKind(ctx context.Context, err error) string {
	var pe *panicError

	switch {
	case errors.As(err, &pe):
		return "panic"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "handler"
	}
}

// withStack attaches the goroutine stack of a recovered panic to the log event.
func withStack(e *zerolog.Event, err error) *zerolog.Event {
	var pe *panicError
	if errors.As(err, &pe) && len(pe.stack) > 0 {
		return e.Bytes("stack", pe.stack)
	}

	return e
}
