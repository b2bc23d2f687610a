package stream

import (
	"context"
	"sync"
)

// Channel is an unbounded multi-producer/single-consumer FIFO of values.
//
// Producers never block: Push appends under a mutex and signals the
// consumer. The signal channel has a buffer of 1, which coalesces multiple
// pushes into a single wake-up; the consumer re-checks the queue after every
// wake-up so no value is lost. Close closes the signal channel, waking the
// consumer for good.
//
// Channel also remembers the last value ever pushed, which is how the
// amplifier network reads its result from a cyclic stream whose contents
// may already have been consumed.
type Channel struct {
	mu     sync.Mutex
	values []int64
	closed bool
	pushed int
	last   int64
	signal chan struct{}
}

// NewChannel creates an empty channel, optionally pre-seeded with values.
func NewChannel(seed ...int64) *Channel {
	c := &Channel{
		values: make([]int64, 0, 8),
		signal: make(chan struct{}, 1),
	}
	for _, v := range seed {
		_ = c.Push(v)
	}
	return c
}

func (c *Channel) sealed() {}

// Push appends v to the back of the channel.
// Safe to call from any goroutine. Returns ErrClosed after Close.
func (c *Channel) Push(v int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.values = append(c.values, v)
	c.pushed++
	c.last = v

	select {
	case c.signal <- struct{}{}:
	default:
	}
	return nil
}

// Pull removes and returns the front value.
//
// Blocks until a value is available, the channel is closed and empty
// (ErrClosed), or ctx is done (ctx.Err()). Only one goroutine may pull from
// a channel.
func (c *Channel) Pull(ctx context.Context) (int64, error) {
	for {
		if v, ok := c.TryPull(); ok {
			return v, nil
		}

		c.mu.Lock()
		if c.closed && len(c.values) == 0 {
			c.mu.Unlock()
			return 0, ErrClosed
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-c.signal:
		}
	}
}

// TryPull removes the front value without blocking.
// Returns (0, false) if the channel is empty.
func (c *Channel) TryPull() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.values) == 0 {
		return 0, false
	}
	v := c.values[0]
	if len(c.values) == 1 {
		c.values = c.values[:0]
	} else {
		c.values = c.values[1:]
	}
	return v, true
}

// Close signals that no more values will be pushed.
// Closing twice is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.signal)
	return nil
}

// Len returns the number of values waiting to be pulled.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// Last returns the most recent value pushed, whether or not it has been
// pulled since. The boolean is false if nothing was ever pushed.
func (c *Channel) Last() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.pushed > 0
}

// Pushed returns the total number of values ever pushed.
func (c *Channel) Pushed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushed
}

// Values returns a copy of the values waiting to be pulled.
func (c *Channel) Values() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, len(c.values))
	copy(out, c.values)
	return out
}

// Drain removes and returns every waiting value.
func (c *Channel) Drain() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int64, len(c.values))
	copy(out, c.values)
	c.values = c.values[:0]
	return out
}
