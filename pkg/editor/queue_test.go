package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := newQueue()
	for i := 0; i < 3; i++ {
		require.NoError(t, q.push(envelope{cmd: SeekTo{Position: time.Duration(i)}}))
	}
	assert.Equal(t, 3, q.len())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		e, ok := q.pop(ctx)
		require.True(t, ok)
		assert.Equal(t, SeekTo{Position: time.Duration(i)}, e.cmd)
	}
}

func TestQueue_PopWaits(t *testing.T) {
	q := newQueue()
	got := make(chan Command, 1)
	go func() {
		e, ok := q.pop(context.Background())
		if ok {
			got <- e.cmd
		}
	}()

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, q.push(envelope{cmd: PlayPause{}}))

	select {
	case cmd := <-got:
		assert.Equal(t, PlayPause{}, cmd)
	case <-time.After(time.Second):
		t.Fatal("pop did not wake up")
	}
}

func TestQueue_Close(t *testing.T) {
	q := newQueue()
	require.NoError(t, q.push(envelope{cmd: StopPreview{}}))

	rest := q.close()
	assert.Len(t, rest, 1)
	assert.ErrorIs(t, q.push(envelope{cmd: StopPreview{}}), ErrClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := q.pop(ctx)
	assert.False(t, ok)
}
