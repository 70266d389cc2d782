package editor

import (
	"context"
	"sync"
)

type envelope struct {
	cmd  Command
	done chan error // nil for fire-and-forget
}

// queue is an unbounded FIFO with many producers and one consumer.
type queue struct {
	mu     sync.Mutex
	items  []envelope
	closed bool
	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) push(e envelope) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// pop waits for the next envelope. It returns false once ctx is done.
func (q *queue) pop(ctx context.Context) (envelope, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items[0] = envelope{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return e, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return envelope{}, false
		case <-q.notify:
		}
	}
}

// close rejects further pushes and returns what was still queued.
func (q *queue) close() []envelope {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	rest := q.items
	q.items = nil
	return rest
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
