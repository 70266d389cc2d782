// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/user/clipedit/pkg/ports"
)

// Engine is a mock implementation of ports.MediaEngine.
// Pipelines it builds produce frames only when a test calls Emit, which makes
// frame delivery deterministic.
type Engine struct {
	mu sync.Mutex

	ProbeFunc       func(ctx context.Context, uri string) (ports.AssetInfo, error)
	NewPipelineFunc func(comp ports.Composition, sink ports.SinkConfig) error

	// SetupPipeline runs on every new pipeline before it is returned,
	// so tests can inject failures.
	SetupPipeline func(p *Pipeline)

	ProbeCalls []string
	pipelines  []*Pipeline
}

// NewEngine creates a mock engine whose probe reports a 10s 1280x720 video with audio.
func NewEngine() *Engine {
	return &Engine{}
}

// DefaultAssetInfo is what the mock probe returns when ProbeFunc is nil.
func DefaultAssetInfo(uri string) ports.AssetInfo {
	return ports.AssetInfo{
		URI:        uri,
		Container:  "mp4",
		Duration:   10 * time.Second,
		Width:      1280,
		Height:     720,
		FrameRate:  30,
		VideoCodec: "h264",
		HasVideo:   true,
		HasAudio:   true,
	}
}

func (e *Engine) Probe(ctx context.Context, uri string) (ports.AssetInfo, error) {
	e.mu.Lock()
	e.ProbeCalls = append(e.ProbeCalls, uri)
	fn := e.ProbeFunc
	e.mu.Unlock()

	if fn != nil {
		return fn(ctx, uri)
	}
	return DefaultAssetInfo(uri), nil
}

func (e *Engine) NewPipeline(comp ports.Composition, sink ports.SinkConfig) (ports.Pipeline, error) {
	e.mu.Lock()
	fn := e.NewPipelineFunc
	setup := e.SetupPipeline
	e.mu.Unlock()

	if fn != nil {
		if err := fn(comp, sink); err != nil {
			return nil, err
		}
	}

	p := &Pipeline{
		sink:    sink,
		comp:    comp,
		Commits: []ports.Composition{comp},
	}
	if setup != nil {
		setup(p)
	}

	e.mu.Lock()
	e.pipelines = append(e.pipelines, p)
	e.mu.Unlock()
	return p, nil
}

// Pipelines returns all pipelines built so far.
func (e *Engine) Pipelines() []*Pipeline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Pipeline(nil), e.pipelines...)
}

// LastPipeline returns the most recently built pipeline, or nil.
func (e *Engine) LastPipeline() *Pipeline {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pipelines) == 0 {
		return nil
	}
	return e.pipelines[len(e.pipelines)-1]
}

var _ ports.MediaEngine = (*Engine)(nil)

// SeekCall records a call to Seek.
type SeekCall struct {
	Position time.Duration
	Flags    ports.SeekFlags
}

// Pipeline is a mock implementation of ports.Pipeline.
type Pipeline struct {
	mu sync.Mutex

	SetStateFunc func(state ports.PipelineState) error
	SeekFunc     func(position time.Duration, flags ports.SeekFlags) error
	CommitFunc   func(comp ports.Composition) error
	CloseFunc    func() error

	// Recorded calls for verification
	StateHistory []ports.PipelineState
	Seeks        []SeekCall
	Commits      []ports.Composition

	sink     ports.SinkConfig
	comp     ports.Composition
	state    ports.PipelineState
	callback ports.SampleCallback
	position time.Duration
	pending  *ports.Sample
	closed   bool
}

func (p *Pipeline) SetNewSampleCallback(fn ports.SampleCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = fn
}

func (p *Pipeline) SetState(state ports.PipelineState) error {
	p.mu.Lock()
	fn := p.SetStateFunc
	p.mu.Unlock()

	if fn != nil {
		if err := fn(state); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
	p.StateHistory = append(p.StateHistory, state)
	return nil
}

func (p *Pipeline) State() ports.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) Seek(position time.Duration, flags ports.SeekFlags) error {
	p.mu.Lock()
	fn := p.SeekFunc
	p.mu.Unlock()

	if fn != nil {
		if err := fn(position, flags); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Seeks = append(p.Seeks, SeekCall{Position: position, Flags: flags})
	p.position = position
	p.pending = nil
	return nil
}

func (p *Pipeline) Commit(comp ports.Composition) error {
	p.mu.Lock()
	fn := p.CommitFunc
	p.mu.Unlock()

	if fn != nil {
		if err := fn(comp); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.comp = comp
	p.Commits = append(p.Commits, comp)
	return nil
}

func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.closed = true
	p.callback = nil
	fn := p.CloseFunc
	p.mu.Unlock()

	if fn != nil {
		return fn()
	}
	return nil
}

// PullSample implements ports.SampleSource.
func (p *Pipeline) PullSample() (*ports.Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil, false
	}
	s := p.pending
	p.pending = nil
	return s, true
}

// Emit renders one frame at the current position, advances the position by one
// frame and invokes the registered callback. It returns FlowOK without calling
// anything when the pipeline is closed, not playing, or has no callback.
func (p *Pipeline) Emit() ports.FlowReturn {
	p.mu.Lock()
	if p.closed || p.state != ports.StatePlaying || p.callback == nil {
		p.mu.Unlock()
		return ports.FlowOK
	}
	w, h := p.sink.Width, p.sink.Height
	pix := make([]byte, w*h*4)
	fill := byte(p.position / time.Second)
	for i := range pix {
		pix[i] = fill
	}
	p.pending = &ports.Sample{
		Caps:   ports.Caps{Format: p.sink.Format, Width: w, Height: h},
		Buffer: &Buffer{Data: pix},
		PTS:    p.position,
	}
	if p.sink.FrameRate > 0 {
		p.position += time.Duration(float64(time.Second) / p.sink.FrameRate)
	}
	cb := p.callback
	p.mu.Unlock()

	return cb(p)
}

// EmitSample makes sample pending (nil for none) and invokes the registered callback.
func (p *Pipeline) EmitSample(sample *ports.Sample) ports.FlowReturn {
	p.mu.Lock()
	cb := p.callback
	p.pending = sample
	p.mu.Unlock()

	if cb == nil {
		return ports.FlowOK
	}
	return cb(p)
}

// Callback returns the currently registered callback.
func (p *Pipeline) Callback() ports.SampleCallback {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callback
}

// Closed reports whether Close was called.
func (p *Pipeline) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// SinkConfig returns the sink configuration the pipeline was built with.
func (p *Pipeline) SinkConfig() ports.SinkConfig {
	return p.sink
}

// Composition returns the composition most recently committed.
func (p *Pipeline) Composition() ports.Composition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.comp
}

var _ ports.Pipeline = (*Pipeline)(nil)
var _ ports.SampleSource = (*Pipeline)(nil)

// Buffer is a mock implementation of ports.Buffer.
type Buffer struct {
	Data []byte
	Err  error
}

func (b *Buffer) Map() ([]byte, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	return b.Data, nil
}

var _ ports.Buffer = (*Buffer)(nil)

// States returns a copy of the recorded state transitions.
func (p *Pipeline) States() []ports.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.PipelineState(nil), p.StateHistory...)
}

// SeekCalls returns a copy of the recorded seeks.
func (p *Pipeline) SeekCalls() []SeekCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SeekCall(nil), p.Seeks...)
}

// CommitCount returns how many compositions the pipeline has seen, including the initial one.
func (p *Pipeline) CommitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Commits)
}
