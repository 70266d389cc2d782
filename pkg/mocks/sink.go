package mocks

import (
	"image"
	"sync"

	"github.com/user/clipedit/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Timelines map[uint64][]byte
	Frames    map[uint64]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:   enabled,
		Timelines: make(map[uint64][]byte),
		Frames:    make(map[uint64]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveTimelineJSON(revision uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Timelines[revision] = data
	return nil
}

func (m *DebugSink) SaveFrame(sessionID string, seq uint64, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[seq] = img
	return nil
}

// TimelineCount returns how many timeline snapshots were saved.
func (m *DebugSink) TimelineCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Timelines)
}

// FrameCount returns how many frames were saved.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Frames)
}

var _ ports.DebugSink = (*DebugSink)(nil)

// FrameSink is a mock implementation of ports.FrameSink that records every frame.
type FrameSink struct {
	mu sync.Mutex

	// Reject makes Offer refuse frames, as a saturated transport would.
	Reject bool

	frames []ports.FrameReady
	notify chan struct{}
}

// NewFrameSink creates a recording frame sink.
func NewFrameSink() *FrameSink {
	return &FrameSink{notify: make(chan struct{}, 1)}
}

func (m *FrameSink) Offer(frame ports.FrameReady) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Reject {
		return false
	}
	m.frames = append(m.frames, frame)
	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// Frames returns a copy of the received frames.
func (m *FrameSink) Frames() []ports.FrameReady {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.FrameReady(nil), m.frames...)
}

// Count returns the number of received frames.
func (m *FrameSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// SetReject toggles frame rejection.
func (m *FrameSink) SetReject(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reject = reject
}

var _ ports.FrameSink = (*FrameSink)(nil)
