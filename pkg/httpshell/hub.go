package httpshell

import "sync"

// hub fans values out to subscribers. Slow subscribers miss values.
type hub[T any] struct {
	mu       sync.Mutex
	subs     map[chan T]struct{}
	keepLast bool
	last     T
	hasLast  bool
}

func newHub[T any](keepLast bool) *hub[T] {
	return &hub[T]{subs: make(map[chan T]struct{}), keepLast: keepLast}
}

// subscribe returns a channel of future values and, when kept, the latest one.
func (h *hub[T]) subscribe() (ch chan T, last T, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch = make(chan T, 1)
	h.subs[ch] = struct{}{}
	return ch, h.last, h.hasLast
}

func (h *hub[T]) unsubscribe(ch chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
}

func (h *hub[T]) publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.keepLast {
		h.last, h.hasLast = v, true
	}
	for ch := range h.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// reset forgets the kept value.
func (h *hub[T]) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	var zero T
	h.last, h.hasLast = zero, false
}

func (h *hub[T]) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
