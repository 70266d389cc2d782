package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/user/clipedit/pkg/ports"
)

// Command is a request applied by the processor's loop.
type Command interface {
	// Name identifies the command in logs and failure reports.
	Name() string

	apply(ctx context.Context, p *Processor) error
}

// AddClip places the media file at Path on layer Layer.
type AddClip struct {
	Path     string
	Layer    uint32
	Start    time.Duration
	Duration time.Duration
}

func (AddClip) Name() string { return "AddClip" }

func (c AddClip) apply(ctx context.Context, p *Processor) error {
	return p.addClip(ctx, c)
}

func (c AddClip) String() string {
	return fmt.Sprintf("AddClip{%s layer=%d start=%s duration=%s}", c.Path, c.Layer, c.Start, c.Duration)
}

// StartPreview replaces any active preview with a new one delivering frames to Sink.
type StartPreview struct {
	Sink ports.FrameSink
}

func (StartPreview) Name() string { return "StartPreview" }

func (c StartPreview) apply(_ context.Context, p *Processor) error {
	return p.startPreview(c.Sink)
}

// StopPreview stops the active preview, if any.
type StopPreview struct{}

func (StopPreview) Name() string { return "StopPreview" }

func (StopPreview) apply(_ context.Context, p *Processor) error {
	p.stopPreview()
	return nil
}

// SeekTo moves the active preview to Position.
type SeekTo struct {
	Position time.Duration
}

func (SeekTo) Name() string { return "SeekTo" }

func (c SeekTo) apply(_ context.Context, p *Processor) error {
	return p.seekTo(c.Position)
}

// PlayPause toggles the active preview between playing and paused.
type PlayPause struct{}

func (PlayPause) Name() string { return "PlayPause" }

func (PlayPause) apply(_ context.Context, p *Processor) error {
	return p.playPause()
}

// userVisible reports whether failures of cmd are surfaced to the UI shell.
func userVisible(cmd Command) bool {
	switch cmd.(type) {
	case AddClip, *AddClip, StartPreview, *StartPreview:
		return true
	default:
		return false
	}
}

// query runs fn on the processor goroutine.
type query struct {
	name string
	fn   func(p *Processor)
}

func (q *query) Name() string { return q.name }

func (q *query) apply(_ context.Context, p *Processor) error {
	q.fn(p)
	return nil
}
