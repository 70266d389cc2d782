package framesink

import (
	"image"
	"sync"

	"github.com/user/clipedit/pkg/ports"
)

// Channel is a bounded frame transport. Offer drops instead of blocking.
type Channel struct {
	mu     sync.RWMutex
	ch     chan ports.FrameReady
	closed bool
}

// NewChannel creates a channel holding at most depth undelivered frames.
func NewChannel(depth int) *Channel {
	if depth < 1 {
		depth = 1
	}
	return &Channel{ch: make(chan ports.FrameReady, depth)}
}

// Offer implements ports.FrameSink.
func (c *Channel) Offer(frame ports.FrameReady) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- frame:
		return true
	default:
		return false
	}
}

// Frames returns the receiving end. It is closed by Close.
func (c *Channel) Frames() <-chan ports.FrameReady {
	return c.ch
}

// Close marks the channel gone; later offers are dropped.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Image wraps the frame's pixels without copying. It reports false when the
// buffer is shorter than the frame geometry.
func Image(frame ports.FrameReady) (*image.RGBA, bool) {
	if frame.Width <= 0 || frame.Height <= 0 || len(frame.Pixels) < frame.Width*frame.Height*4 {
		return nil, false
	}
	return &image.RGBA{
		Pix:    frame.Pixels,
		Stride: frame.Width * 4,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}, true
}

var _ ports.FrameSink = (*Channel)(nil)
