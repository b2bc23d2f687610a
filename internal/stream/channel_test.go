package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_PushPull(t *testing.T) {
	c := NewChannel()

	require.NoError(t, c.Push(42))

	v, err := c.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestChannel_FIFO(t *testing.T) {
	c := NewChannel(1, 2, 3)

	for _, want := range []int64{1, 2, 3} {
		got, err := c.Pull(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestChannel_TryPull_Empty(t *testing.T) {
	c := NewChannel()

	_, ok := c.TryPull()
	assert.False(t, ok, "pull from empty channel should return false")
}

func TestChannel_Pull_BlocksUntilAvailable(t *testing.T) {
	c := NewChannel()
	done := make(chan int64)

	go func() {
		v, err := c.Pull(context.Background())
		if err == nil {
			done <- v
		}
	}()

	// Give goroutine time to block
	time.Sleep(10 * time.Millisecond)

	select {
	case <-done:
		t.Fatal("pull returned before a value was pushed")
	default:
	}

	require.NoError(t, c.Push(7))

	select {
	case v := <-done:
		assert.Equal(t, int64(7), v)
	case <-time.After(time.Second):
		t.Fatal("pull did not unblock")
	}
}

func TestChannel_Close_UnblocksPull(t *testing.T) {
	c := NewChannel()
	done := make(chan error)

	go func() {
		_, err := c.Pull(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("pull did not unblock after close")
	}
}

func TestChannel_Close_DrainsBeforeErrClosed(t *testing.T) {
	c := NewChannel(5, 6)
	require.NoError(t, c.Close())

	v, err := c.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = c.Pull(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	_, err = c.Pull(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestChannel_Push_AfterClose(t *testing.T) {
	c := NewChannel()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "second close is a no-op")

	assert.ErrorIs(t, c.Push(1), ErrClosed)
	assert.Equal(t, 0, c.Pushed())
}

func TestChannel_Pull_ContextCanceled(t *testing.T) {
	c := NewChannel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Pull(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChannel_LastSurvivesPull(t *testing.T) {
	c := NewChannel()

	_, ok := c.Last()
	assert.False(t, ok)

	require.NoError(t, c.Push(10))
	require.NoError(t, c.Push(20))
	_, _ = c.Pull(context.Background())
	_, _ = c.Pull(context.Background())

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, int64(20), last)
	assert.Equal(t, 2, c.Pushed())
	assert.Equal(t, 0, c.Len())
}

func TestChannel_ValuesAndDrain(t *testing.T) {
	c := NewChannel(1, 2, 3)

	snapshot := c.Values()
	assert.Equal(t, []int64{1, 2, 3}, snapshot)
	snapshot[0] = 99
	assert.Equal(t, []int64{1, 2, 3}, c.Values(), "snapshot must not alias")

	assert.Equal(t, []int64{1, 2, 3}, c.Drain())
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Drain())
}

func TestChannel_ConcurrentProducers(t *testing.T) {
	c := NewChannel()

	const producers = 8
	const valuesPerProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int64) {
			defer wg.Done()
			for i := int64(0); i < valuesPerProducer; i++ {
				_ = c.Push(base*1000 + i)
			}
		}(int64(p))
	}

	received := make(map[int64]bool)
	lastPerProducer := make(map[int64]int64)
	for len(received) < producers*valuesPerProducer {
		v, err := c.Pull(context.Background())
		require.NoError(t, err)
		received[v] = true

		// Per-producer order must be preserved.
		p, i := v/1000, v%1000
		if prev, ok := lastPerProducer[p]; ok {
			assert.Greater(t, i, prev)
		}
		lastPerProducer[p] = i
	}
	wg.Wait()

	assert.Len(t, received, producers*valuesPerProducer)
}

func TestChannel_ImplementsStream(t *testing.T) {
	var s Stream = NewChannel()
	require.NotNil(t, s)
}
