package stream

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned by Pull once a stream is closed and drained, and by
// Push on a closed stream.
var ErrClosed = errors.New("stream closed")

// Stream is the I/O capability consumed by the Input and Output
// instructions.
//
// The interface is sealed: Channel and Console are the only
// implementations.
type Stream interface {
	// Pull removes and returns the next value, blocking until one exists.
	Pull(ctx context.Context) (int64, error)

	// Push appends a value. It never blocks.
	Push(v int64) error

	// Close marks the stream as permanently finished. Values already pushed
	// remain available to Pull.
	Close() error

	sealed()
}

// LiteralError reports a console line that is not a base-10 integer.
type LiteralError struct {
	Text string
	Err  error
}

func (e *LiteralError) Error() string {
	return fmt.Sprintf("malformed input literal %q", e.Text)
}

func (e *LiteralError) Unwrap() error {
	return e.Err
}
