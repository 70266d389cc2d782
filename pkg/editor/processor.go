// Package editor implements the command processor that owns the timeline and
// the preview session.
//
// All state is confined to the goroutine running Processor.Run. Callers on any
// goroutine talk to it through Submit and Do; commands are applied one at a
// time in the order they were queued, and a failing command never stops the
// loop.
package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/asset"
	"github.com/user/clipedit/pkg/framesink"
	"github.com/user/clipedit/pkg/ports"
	"github.com/user/clipedit/pkg/preview"
	"github.com/user/clipedit/pkg/timeline"
)

// Options configures a Processor.
type Options struct {
	// Preview configures the frame sink of every preview session.
	Preview preview.Options

	// Debug receives timeline snapshots and sampled frames when enabled.
	Debug ports.DebugSink

	// DebugFrameInterval saves every Nth preview frame to Debug. Zero disables it.
	DebugFrameInterval int

	// OnFailure is called on the processor goroutine for failures the user
	// can act on (AddClip and StartPreview). It must not block.
	OnFailure func(Failure)
}

// Status summarizes the editor state.
type Status struct {
	Revision uint64          `json:"revision"`
	Layers   int             `json:"layers"`
	Clips    int             `json:"clips"`
	Duration time.Duration   `json:"durationNs"`
	Assets   int             `json:"assets"`
	Preview  *preview.Status `json:"preview,omitempty"`
}

// Processor serializes all editing and preview commands.
type Processor struct {
	engine   ports.MediaEngine
	resolver *asset.Resolver
	timeline *timeline.Timeline
	opts     Options
	logger   ports.Logger

	session *preview.Session
	tap     *framesink.DebugTap

	queue   *queue
	running atomic.Bool
	done    chan struct{}
}

// New creates a processor with an empty timeline. Call Run to start it.
func New(engine ports.MediaEngine, fs ports.FileSystem, opts Options, logger ports.Logger) *Processor {
	return &Processor{
		engine:   engine,
		resolver: asset.NewResolver(fs, engine, logger),
		timeline: timeline.New(),
		opts:     opts,
		logger:   logger.WithComponent("editor"),
		queue:    newQueue(),
		done:     make(chan struct{}),
	}
}

// Run applies queued commands until ctx is done. On return the active preview
// is stopped and commands still queued fail with ErrClosed.
func (p *Processor) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(p.done)

	p.logger.Debug(l10n.T("Editor started"))
	for {
		env, ok := p.queue.pop(ctx)
		if !ok {
			break
		}
		p.process(ctx, env)
	}

	for _, env := range p.queue.close() {
		if env.done != nil {
			env.done <- ErrClosed
		}
	}
	p.stopPreview()
	p.logger.Debug(l10n.T("Editor stopped"))
	return nil
}

// Done is closed when Run has returned.
func (p *Processor) Done() <-chan struct{} {
	return p.done
}

// Submit queues cmd and returns immediately. It only fails once the processor
// has shut down.
func (p *Processor) Submit(cmd Command) error {
	return p.queue.push(envelope{cmd: cmd})
}

// Do queues cmd and waits for its result.
func (p *Processor) Do(ctx context.Context, cmd Command) error {
	done := make(chan error, 1)
	if err := p.queue.push(envelope{cmd: cmd, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Timeline returns a snapshot of the timeline taken between commands.
func (p *Processor) Timeline(ctx context.Context) (timeline.Snapshot, error) {
	out := make(chan timeline.Snapshot, 1)
	err := p.Do(ctx, &query{name: "Timeline", fn: func(p *Processor) {
		out <- p.timeline.Snapshot()
	}})
	if err != nil {
		return timeline.Snapshot{}, err
	}
	return <-out, nil
}

// Status returns the editor status taken between commands.
func (p *Processor) Status(ctx context.Context) (Status, error) {
	out := make(chan Status, 1)
	err := p.Do(ctx, &query{name: "Status", fn: func(p *Processor) {
		out <- p.status()
	}})
	if err != nil {
		return Status{}, err
	}
	return <-out, nil
}

func (p *Processor) status() Status {
	st := Status{
		Revision: p.timeline.Revision(),
		Layers:   p.timeline.LayerCount(),
		Clips:    p.timeline.ClipCount(),
		Duration: p.timeline.Duration(),
		Assets:   p.resolver.Cached(),
	}
	if p.session != nil {
		ps := p.session.Status()
		st.Preview = &ps
	}
	return st
}

func (p *Processor) process(ctx context.Context, env envelope) {
	err := p.apply(ctx, env.cmd)
	if err != nil {
		p.report(env.cmd, err)
	}
	if env.done != nil {
		env.done <- err
	}
}

func (p *Processor) apply(ctx context.Context, cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPanic, cmd.Name(), r)
		}
	}()
	return cmd.apply(ctx, p)
}

func (p *Processor) report(cmd Command, err error) {
	f := Failure{
		Command:     cmd.Name(),
		Err:         err,
		Message:     err.Error(),
		Kind:        Classify(err),
		UserVisible: userVisible(cmd),
	}

	if !f.UserVisible {
		p.logger.Warn(l10n.F("%s ignored (%s): %s", f.Command, f.Kind, err))
		return
	}

	p.logger.Error(l10n.F("%s failed (%s): %s", f.Command, f.Kind, err))
	if p.opts.OnFailure != nil {
		p.opts.OnFailure(f)
	}
}

func (p *Processor) addClip(ctx context.Context, c AddClip) error {
	if err := timeline.ValidatePlacement(c.Start, c.Duration); err != nil {
		return err
	}
	if c.Layer == timeline.NoLayerPriority {
		return fmt.Errorf("%w: priority %d is reserved", timeline.ErrLayerAccess, c.Layer)
	}

	a, err := p.resolver.Resolve(ctx, c.Path)
	if err != nil {
		return err
	}

	id, err := p.timeline.AddClip(c.Layer, a, c.Start, c.Duration, ports.TrackVideo|ports.TrackAudio)
	if err != nil {
		return err
	}
	p.logger.Info(l10n.F("Added clip %s on layer %d at %s for %s", id, c.Layer, c.Start, c.Duration))

	p.saveTimeline()

	if p.session != nil {
		if err := p.session.Resync(p.timeline.Composition()); err != nil {
			p.logger.Warn(l10n.F("Preview did not pick up clip %s: %s", id, err))
		}
	}
	return nil
}

func (p *Processor) saveTimeline() {
	if p.opts.Debug == nil || !p.opts.Debug.Enabled() {
		return
	}
	snap := p.timeline.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		p.logger.Warn(l10n.F("Failed to encode timeline: %s", err))
		return
	}
	if err := p.opts.Debug.SaveTimelineJSON(snap.Revision, data); err != nil {
		p.logger.Warn(l10n.F("Failed to save timeline: %s", err))
	}
}

func (p *Processor) startPreview(sink ports.FrameSink) error {
	p.stopPreview()

	out := sink
	var tap *framesink.DebugTap
	if sink != nil && p.opts.Debug != nil && p.opts.Debug.Enabled() && p.opts.DebugFrameInterval > 0 {
		tap = framesink.NewDebugTap(sink, p.opts.Debug, p.opts.DebugFrameInterval, p.logger)
		out = tap
	}

	s, err := preview.Start(p.engine, p.timeline.Composition(), out, p.opts.Preview, p.logger)
	if err != nil {
		if tap != nil {
			tap.Close()
		}
		return err
	}
	p.session = s
	p.tap = tap
	return nil
}

func (p *Processor) stopPreview() {
	if p.session == nil {
		return
	}
	p.session.Stop()
	p.session = nil
	if p.tap != nil {
		p.tap.Close()
		p.tap = nil
	}
}

func (p *Processor) seekTo(position time.Duration) error {
	if p.session == nil {
		p.logger.Info(l10n.F("Seek to %s ignored: no active preview", position))
		return nil
	}
	return p.session.Seek(position)
}

func (p *Processor) playPause() error {
	if p.session == nil {
		return fmt.Errorf("%w: no active preview", preview.ErrInvalidTransition)
	}
	return p.session.Toggle()
}
