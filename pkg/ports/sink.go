package ports

import (
	"image"
	"time"
)

// FrameReady is the notification sent to the UI shell for every extracted frame.
type FrameReady struct {
	SessionID string
	Seq       uint64
	Width     int
	Height    int
	Pixels    []byte // RGBA, Width*Height*4 bytes
	PTS       time.Duration
}

// FrameSink is the UI shell's receiving end for preview frames.
// Offer must not block; it returns false when the frame was not accepted.
type FrameSink interface {
	Offer(frame FrameReady) bool
}

// DebugSink abstracts debug output for intermediate results.
// It allows saving editor state and preview frames for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveTimelineJSON saves a timeline snapshot as JSON.
	SaveTimelineJSON(revision uint64, data []byte) error

	// SaveFrame saves one extracted preview frame.
	SaveFrame(sessionID string, seq uint64, img image.Image) error
}
