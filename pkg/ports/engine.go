// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"time"
)

// TrackType identifies a timeline track kind.
// Values follow the GStreamer Editing Services track-type flags.
type TrackType uint32

const (
	TrackAudio TrackType = 1 << 1
	TrackVideo TrackType = 1 << 2
)

// Has reports whether all tracks in other are set in t.
func (t TrackType) Has(other TrackType) bool {
	return t&other == other
}

// String returns a readable form such as "video+audio".
func (t TrackType) String() string {
	switch {
	case t.Has(TrackVideo | TrackAudio):
		return "video+audio"
	case t.Has(TrackVideo):
		return "video"
	case t.Has(TrackAudio):
		return "audio"
	default:
		return "none"
	}
}

// AssetInfo is what the engine learned about a media source while probing it.
type AssetInfo struct {
	URI        string        `json:"uri"`
	Container  string        `json:"container"`
	Duration   time.Duration `json:"duration"`
	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	FrameRate  float64       `json:"frameRate,omitempty"`
	VideoCodec string        `json:"videoCodec,omitempty"`
	HasVideo   bool          `json:"hasVideo"`
	HasAudio   bool          `json:"hasAudio"`
}

// Composition is an immutable view of a timeline handed to the engine.
// Layers are sorted by ascending priority; priority 0 is the topmost layer.
type Composition struct {
	Revision uint64
	Duration time.Duration
	Layers   []CompositionLayer
}

// CompositionLayer is one layer of a Composition.
type CompositionLayer struct {
	Priority uint32
	Clips    []CompositionClip
}

// CompositionClip is one placed clip of a Composition.
type CompositionClip struct {
	ID       string
	URI      string
	Start    time.Duration
	InPoint  time.Duration
	Duration time.Duration
	Tracks   TrackType
	Asset    AssetInfo
}

// End returns the timeline position right after the clip.
func (c CompositionClip) End() time.Duration {
	return c.Start + c.Duration
}

// PixelFormat names the raw layout of extracted frame bytes.
type PixelFormat string

const (
	// PixelFormatRGBA is 8-bit RGBA, 4 bytes per pixel, row-major, no padding.
	PixelFormatRGBA PixelFormat = "RGBA"
)

// SinkConfig configures the frame-extraction sink of a pipeline.
type SinkConfig struct {
	Format    PixelFormat
	Width     int
	Height    int
	FrameRate float64
}

// PipelineState mirrors the engine's element states.
type PipelineState int

const (
	StateNull PipelineState = iota
	StateReady
	StatePaused
	StatePlaying
)

// String returns the state name.
func (s PipelineState) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateReady:
		return "ready"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// SeekFlags modifies how a seek is performed.
type SeekFlags uint32

const (
	// SeekFlush discards queued data before seeking.
	SeekFlush SeekFlags = 1 << iota
	// SeekKeyUnit seeks to the nearest sync point.
	SeekKeyUnit
	// SeekSnapBefore picks the sync point at or before the requested position.
	SeekSnapBefore
)

// FlowReturn is what a sample callback tells the engine.
type FlowReturn int

const (
	FlowOK FlowReturn = iota
	// FlowEOS signals that no more samples are expected.
	FlowEOS
	// FlowError signals an internal data-flow error for the current sample.
	FlowError
)

// String returns the flow return name.
func (f FlowReturn) String() string {
	switch f {
	case FlowOK:
		return "ok"
	case FlowEOS:
		return "eos"
	case FlowError:
		return "error"
	default:
		return "unknown"
	}
}

// Caps describes the negotiated format of a sample.
type Caps struct {
	Format PixelFormat
	Width  int
	Height int
}

// Buffer holds the memory of one decoded frame.
type Buffer interface {
	// Map returns read access to the buffer memory.
	// The returned slice is only valid until the callback returns.
	Map() ([]byte, error)
}

// Sample is one decoded frame pulled from a pipeline.
type Sample struct {
	Caps   Caps
	Buffer Buffer
	PTS    time.Duration
}

// SampleSource is handed to the sample callback to pull the pending frame.
type SampleSource interface {
	// PullSample returns the pending sample, or false when none is available.
	PullSample() (*Sample, bool)
}

// SampleCallback is invoked from the engine's own goroutine for every new sample.
type SampleCallback func(src SampleSource) FlowReturn

// Pipeline is a playback pipeline bound to a composition.
type Pipeline interface {
	// SetNewSampleCallback registers fn for new samples. A nil fn unregisters.
	SetNewSampleCallback(fn SampleCallback)

	// SetState drives the pipeline to the target state.
	SetState(state PipelineState) error

	// State returns the current pipeline state.
	State() PipelineState

	// Seek moves the playback position.
	Seek(position time.Duration, flags SeekFlags) error

	// Commit replaces the composition the pipeline renders.
	Commit(comp Composition) error

	// Close releases all pipeline resources and waits for engine goroutines to exit.
	Close() error
}

// AssetProber determines format and duration of a media source.
type AssetProber interface {
	// Probe inspects the source at uri.
	Probe(ctx context.Context, uri string) (AssetInfo, error)
}

// MediaEngine is the decode/composition/render subsystem.
type MediaEngine interface {
	AssetProber

	// NewPipeline builds a pipeline rendering comp into a frame sink configured by sink.
	NewPipeline(comp Composition, sink SinkConfig) (Pipeline, error)
}
