// Package preview owns the lifecycle of one live preview pipeline.
//
// A Session is driven from a single goroutine (the editor's command loop).
// The only code that runs elsewhere is the sample callback, which the engine
// invokes from its own goroutine; it touches nothing but atomics and the
// frame adapter captured at Start.
package preview

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/framesink"
	"github.com/user/clipedit/pkg/ports"
)

// Options configures the frame-extraction sink of a session.
type Options struct {
	Width     int
	Height    int
	FrameRate float64
}

// DefaultOptions returns a 1280x720 sink at 30 fps.
func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720, FrameRate: 30}
}

func (o Options) sinkConfig() ports.SinkConfig {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.FrameRate <= 0 {
		o.FrameRate = d.FrameRate
	}
	return ports.SinkConfig{
		Format:    ports.PixelFormatRGBA,
		Width:     o.Width,
		Height:    o.Height,
		FrameRate: o.FrameRate,
	}
}

// Status is a point-in-time view of a session.
type Status struct {
	SessionID string        `json:"sessionId"`
	State     State         `json:"state"`
	Revision  uint64        `json:"revision"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	LastPTS   time.Duration `json:"lastPtsNs"`
	Delivered uint64        `json:"delivered"`
	Dropped   uint64        `json:"dropped"`
	BadFrames uint64        `json:"badFrames"`
}

// Session is one preview pipeline bound to a timeline composition.
type Session struct {
	id       string
	pipeline ports.Pipeline
	adapter  *framesink.Adapter
	sink     ports.SinkConfig
	logger   ports.Logger

	state    State
	revision uint64

	// written by the sample callback
	width     atomic.Int64
	height    atomic.Int64
	lastPTS   atomic.Int64
	badFrames atomic.Uint64
}

// Start builds a pipeline for comp, wires its frames to sink and starts playback.
// On failure no pipeline is left behind.
func Start(engine ports.MediaEngine, comp ports.Composition, sink ports.FrameSink, opts Options, logger ports.Logger) (*Session, error) {
	id := newSessionID()
	cfg := opts.sinkConfig()

	pipeline, err := engine.NewPipeline(comp, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
	}

	s := &Session{
		id:       id,
		pipeline: pipeline,
		adapter:  framesink.NewAdapter(id, sink),
		sink:     cfg,
		logger:   logger.WithComponent("preview"),
		state:    StateUninitialized,
		revision: comp.Revision,
	}
	pipeline.SetNewSampleCallback(s.onNewSample)

	if err := pipeline.SetState(ports.StatePlaying); err != nil {
		s.teardown()
		return nil, fmt.Errorf("%w: to %s: %w", ErrStateChange, ports.StatePlaying, err)
	}
	s.state = StatePlaying

	s.logger.Info(l10n.F("Preview session %s started (%dx%d @ %.2f fps)", id, cfg.Width, cfg.Height, cfg.FrameRate))
	return s, nil
}

// ID returns the session identifier carried by every frame.
func (s *Session) ID() string {
	return s.id
}

// State returns the playback state.
func (s *Session) State() State {
	return s.state
}

// Pause moves a playing session to Paused.
func (s *Session) Pause() error {
	if s.state != StatePlaying {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, s.state)
	}
	return s.transition(ports.StatePaused, StatePaused)
}

// Resume moves a paused session back to Playing.
func (s *Session) Resume() error {
	if s.state != StatePaused {
		return fmt.Errorf("%w: resume while %s", ErrInvalidTransition, s.state)
	}
	return s.transition(ports.StatePlaying, StatePlaying)
}

// Toggle pauses a playing session or resumes a paused one.
func (s *Session) Toggle() error {
	switch s.state {
	case StatePlaying:
		return s.Pause()
	case StatePaused:
		return s.Resume()
	default:
		return fmt.Errorf("%w: toggle while %s", ErrInvalidTransition, s.state)
	}
}

func (s *Session) transition(target ports.PipelineState, next State) error {
	if err := s.pipeline.SetState(target); err != nil {
		return fmt.Errorf("%w: to %s: %w", ErrStateChange, target, err)
	}
	s.logger.Debug(l10n.F("Preview session %s: %s -> %s", s.id, s.state, next))
	s.state = next
	return nil
}

// Seek moves playback to the sync point at or before position.
// The playback state does not change.
func (s *Session) Seek(position time.Duration) error {
	if !s.state.Active() {
		return fmt.Errorf("%w: seek while %s", ErrInvalidTransition, s.state)
	}
	if position < 0 {
		return fmt.Errorf("%w: negative position %s", ErrSeekRejected, position)
	}

	flags := ports.SeekFlush | ports.SeekKeyUnit | ports.SeekSnapBefore
	if err := s.pipeline.Seek(position, flags); err != nil {
		return fmt.Errorf("%w: to %s: %w", ErrSeekRejected, position, err)
	}
	s.logger.Debug(l10n.F("Preview session %s seeked to %s", s.id, position))
	return nil
}

// Resync hands an updated composition to the live pipeline.
func (s *Session) Resync(comp ports.Composition) error {
	if !s.state.Active() {
		return fmt.Errorf("%w: resync while %s", ErrInvalidTransition, s.state)
	}
	if err := s.pipeline.Commit(comp); err != nil {
		return fmt.Errorf("%w: revision %d: %w", ErrResync, comp.Revision, err)
	}
	s.revision = comp.Revision
	return nil
}

// Stop tears the pipeline down. Calling it again does nothing.
func (s *Session) Stop() {
	if s.state == StateStopped {
		return
	}
	s.teardown()
	s.state = StateStopped

	stats := s.adapter.Stats()
	s.logger.Info(l10n.F("Preview session %s stopped (%d delivered, %d dropped)", s.id, stats.Delivered, stats.Dropped))
}

// teardown releases the pipeline. Frames that race with it are dropped by the
// detached adapter.
func (s *Session) teardown() {
	s.adapter.Detach()
	s.pipeline.SetNewSampleCallback(nil)
	if err := s.pipeline.SetState(ports.StateNull); err != nil {
		s.logger.Warn(l10n.F("Failed to set pipeline to null: %s", err))
	}
	if err := s.pipeline.Close(); err != nil {
		s.logger.Warn(l10n.F("Failed to close pipeline: %s", err))
	}
}

// Status returns counters and the most recent frame geometry.
func (s *Session) Status() Status {
	stats := s.adapter.Stats()
	return Status{
		SessionID: s.id,
		State:     s.state,
		Revision:  s.revision,
		Width:     int(s.width.Load()),
		Height:    int(s.height.Load()),
		LastPTS:   time.Duration(s.lastPTS.Load()),
		Delivered: stats.Delivered,
		Dropped:   stats.Dropped,
		BadFrames: s.badFrames.Load(),
	}
}

// onNewSample is the pull-callback run on the engine's goroutine.
func (s *Session) onNewSample(src ports.SampleSource) ports.FlowReturn {
	sample, ok := src.PullSample()
	if !ok || sample == nil {
		return ports.FlowEOS
	}
	if sample.Buffer == nil {
		s.badFrames.Add(1)
		return ports.FlowError
	}

	data, err := sample.Buffer.Map()
	if err != nil {
		s.badFrames.Add(1)
		return ports.FlowError
	}

	w, h := sample.Caps.Width, sample.Caps.Height
	if w <= 0 || h <= 0 || len(data) < w*h*4 {
		s.badFrames.Add(1)
		return ports.FlowError
	}

	// The mapping is only valid for the duration of the callback.
	pixels := make([]byte, w*h*4)
	copy(pixels, data)

	s.width.Store(int64(w))
	s.height.Store(int64(h))
	s.lastPTS.Store(int64(sample.PTS))

	s.adapter.Forward(w, h, pixels, sample.PTS)
	return ports.FlowOK
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
