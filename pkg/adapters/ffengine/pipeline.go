package ffengine

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/ports"
)

// rgbaBuffer is a rendered frame. It is never written after the sample is published.
type rgbaBuffer struct {
	img *image.RGBA
}

func (b rgbaBuffer) Map() ([]byte, error) {
	if b.img == nil {
		return nil, ErrNoFrame
	}
	return b.img.Pix, nil
}

// pipeline renders a composition on its own goroutine at the sink frame rate
// and hands every frame to the registered sample callback.
type pipeline struct {
	sink   ports.SinkConfig
	step   time.Duration
	logger ports.Logger

	mu       sync.Mutex
	comp     ports.Composition
	state    ports.PipelineState
	position time.Duration
	callback ports.SampleCallback
	pending  *ports.Sample
	preroll  bool
	eos      bool
	closed   bool

	comps  *compositor
	cancel context.CancelFunc
	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}
}

func newPipeline(comp ports.Composition, sink ports.SinkConfig, open SourceFactory, logger ports.Logger) *pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pipeline{
		sink:   sink,
		step:   frameDuration(sink.FrameRate),
		logger: logger,
		comp:   comp,
		state:  ports.StateNull,
		comps:  newCompositor(ctx, open, sink, logger),
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *pipeline) fps() float64 {
	return sinkRate(p.sink.FrameRate)
}

func (p *pipeline) notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *pipeline) SetNewSampleCallback(fn ports.SampleCallback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = fn
}

// SetState changes the target state. Moving to Paused from a lower state
// renders one preroll frame; moving to Null rewinds.
func (p *pipeline) SetState(state ports.PipelineState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if state < ports.StateNull || state > ports.StatePlaying {
		return fmt.Errorf("%w: %d", ErrInvalidState, state)
	}

	prev := p.state
	p.state = state
	switch {
	case state == ports.StateNull:
		p.position = 0
		p.pending = nil
		p.eos = false
	case state == ports.StatePaused && prev < ports.StatePaused:
		p.preroll = true
	}
	p.notify()
	return nil
}

func (p *pipeline) State() ports.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Seek flushes the pending frame and moves to position. With SeekSnapBefore
// the position is rounded down to a frame boundary.
func (p *pipeline) Seek(position time.Duration, flags ports.SeekFlags) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.state < ports.StatePaused {
		return fmt.Errorf("%w: pipeline is %s", ErrNotSeekable, p.state)
	}
	if position < 0 {
		return fmt.Errorf("%w: negative position", ErrNotSeekable)
	}
	if p.comp.Duration > 0 && position > p.comp.Duration {
		position = p.comp.Duration
	}

	if flags&ports.SeekSnapBefore != 0 {
		position = framePTS(frameIndex(position, p.fps()), p.fps())
	}
	p.position = position
	p.eos = false
	if flags&ports.SeekFlush != 0 {
		p.pending = nil
	}
	if p.state == ports.StatePaused {
		p.preroll = true
	}
	p.notify()
	return nil
}

// Commit swaps the composition. Playback resumes if the new one extends
// past an end-of-stream position.
func (p *pipeline) Commit(comp ports.Composition) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.comp = comp
	if p.eos && p.position < comp.Duration {
		p.eos = false
	}
	if p.state == ports.StatePaused {
		p.preroll = true
	}
	p.notify()
	return nil
}

// Close stops the render goroutine and all decoders. No callback runs after
// Close returns.
func (p *pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.callback = nil
	p.pending = nil
	p.mu.Unlock()

	close(p.stop)
	p.cancel()
	<-p.done
	p.comps.Close()
	return nil
}

// PullSample implements ports.SampleSource.
func (p *pipeline) PullSample() (*ports.Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil, false
	}
	s := p.pending
	p.pending = nil
	return s, true
}

func (p *pipeline) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.step)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-p.wake:
		case <-ticker.C:
		}
		p.tick()
	}
}

// tick renders at most one frame. The lock is released while rendering and
// while the callback runs.
func (p *pipeline) tick() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	playing := p.state == ports.StatePlaying && !p.eos
	if !playing && !p.preroll {
		p.mu.Unlock()
		return
	}
	p.preroll = false
	comp := p.comp
	pos := p.position

	if pos >= comp.Duration {
		// end of stream: the callback finds no sample and reports EOS
		p.eos = true
		p.pending = nil
		cb := p.callback
		p.mu.Unlock()
		if cb != nil && playing {
			cb(p)
		}
		return
	}
	p.mu.Unlock()

	img := p.comps.Render(comp, pos)

	p.mu.Lock()
	if p.closed || p.position != pos {
		// seeked or closed while rendering
		p.mu.Unlock()
		return
	}
	p.pending = &ports.Sample{
		Caps: ports.Caps{
			Format: ports.PixelFormatRGBA,
			Width:  p.sink.Width,
			Height: p.sink.Height,
		},
		Buffer: rgbaBuffer{img: img},
		PTS:    pos,
	}
	if p.state == ports.StatePlaying {
		p.position = framePTS(frameIndex(pos, p.fps())+1, p.fps())
	}
	cb := p.callback
	p.mu.Unlock()

	if cb == nil {
		return
	}
	switch cb(p) {
	case ports.FlowEOS:
		p.mu.Lock()
		p.eos = true
		p.mu.Unlock()
	case ports.FlowError:
		p.logger.Debug(l10n.F("Frame at %s rejected by sink", pos))
	}
}

var _ ports.Pipeline = (*pipeline)(nil)
var _ ports.SampleSource = (*pipeline)(nil)
