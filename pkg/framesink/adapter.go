// Package framesink bridges frames pulled by a preview session to the UI shell.
//
// Frames are never queued on the engine side: when the receiving end is saturated
// or gone the frame is dropped, so the engine's streaming goroutine never waits.
// Pixel slices handed to a sink are shared and must be treated as read-only.
package framesink

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/clipedit/pkg/ports"
)

// Stats counts what an Adapter did with the frames it received.
type Stats struct {
	Delivered uint64 `json:"delivered"`
	Dropped   uint64 `json:"dropped"`
}

// Adapter forwards frames of one preview session to a ports.FrameSink.
type Adapter struct {
	sessionID string
	sink      ports.FrameSink

	mu       sync.RWMutex
	attached bool

	seq       atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewAdapter creates an attached adapter. A nil sink drops every frame.
func NewAdapter(sessionID string, sink ports.FrameSink) *Adapter {
	return &Adapter{
		sessionID: sessionID,
		sink:      sink,
		attached:  true,
	}
}

// Forward offers one frame to the sink and reports whether it was accepted.
// It is called from the engine's goroutine and never blocks on the sink.
func (a *Adapter) Forward(width, height int, pixels []byte, pts time.Duration) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.attached || a.sink == nil {
		a.dropped.Add(1)
		return false
	}

	frame := ports.FrameReady{
		SessionID: a.sessionID,
		Seq:       a.seq.Add(1),
		Width:     width,
		Height:    height,
		Pixels:    pixels,
		PTS:       pts,
	}
	if !a.sink.Offer(frame) {
		a.dropped.Add(1)
		return false
	}
	a.delivered.Add(1)
	return true
}

// Detach stops delivery. When Detach returns no further frame reaches the sink.
func (a *Adapter) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attached = false
}

// Attached reports whether frames are still delivered.
func (a *Adapter) Attached() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.attached
}

// Stats returns the delivery counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Delivered: a.delivered.Load(),
		Dropped:   a.dropped.Load(),
	}
}
