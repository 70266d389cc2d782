package framesink

import (
	"sync"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/ports"
)

// DebugTap passes frames through to another sink and saves every Nth one
// to a ports.DebugSink from its own goroutine.
type DebugTap struct {
	next   ports.FrameSink
	debug  ports.DebugSink
	every  uint64
	logger ports.Logger

	mu     sync.RWMutex
	queue  chan ports.FrameReady
	closed bool
	done   chan struct{}
}

// NewDebugTap starts a tap saving one frame out of every.
func NewDebugTap(next ports.FrameSink, debug ports.DebugSink, every int, logger ports.Logger) *DebugTap {
	if every < 1 {
		every = 1
	}
	t := &DebugTap{
		next:   next,
		debug:  debug,
		every:  uint64(every),
		logger: logger.WithComponent("debugtap"),
		queue:  make(chan ports.FrameReady, 1),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// Offer implements ports.FrameSink.
func (t *DebugTap) Offer(frame ports.FrameReady) bool {
	ok := t.next.Offer(frame)

	if frame.Seq%t.every == 0 {
		t.mu.RLock()
		if !t.closed {
			select {
			case t.queue <- frame:
			default:
			}
		}
		t.mu.RUnlock()
	}
	return ok
}

// Close stops the tap after pending saves finish.
func (t *DebugTap) Close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	<-t.done
}

func (t *DebugTap) run() {
	defer close(t.done)
	for frame := range t.queue {
		img, ok := Image(frame)
		if !ok {
			continue
		}
		if err := t.debug.SaveFrame(frame.SessionID, frame.Seq, img); err != nil {
			t.logger.Warn(l10n.F("Failed to save debug frame %d: %s", frame.Seq, err))
		}
	}
}

var _ ports.FrameSink = (*DebugTap)(nil)
