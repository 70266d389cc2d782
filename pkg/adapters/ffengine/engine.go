// Package ffengine is the media engine used outside of tests.
//
// Assets are probed with mp4ff (MP4/MOV) and Vidio (everything else). A
// pipeline decodes each visible clip with its own ffmpeg process producing raw
// RGBA at the sink size and composites the layers with x/image.
package ffengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffengine: ffmpeg not found")

	ErrUnsupportedSink = errors.New("ffengine: unsupported sink configuration")
	ErrClosed          = errors.New("ffengine: pipeline closed")
	ErrInvalidState    = errors.New("ffengine: invalid pipeline state")
	ErrNotSeekable     = errors.New("ffengine: not seekable")
	ErrNoFrame         = errors.New("ffengine: buffer has no frame")
	ErrUnsupportedURI  = errors.New("ffengine: unsupported uri")
)

// Options configures an Engine.
type Options struct {
	// FFmpegPath overrides the ffmpeg lookup.
	FFmpegPath string
}

// Engine implements ports.MediaEngine.
type Engine struct {
	prober *Prober
	open   SourceFactory
	logger ports.Logger
}

// New locates ffmpeg and creates an engine.
func New(opts Options, logger ports.Logger) (*Engine, error) {
	path, err := FindFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	logger = logger.WithComponent("engine")
	logger.Debug(l10n.F("Using ffmpeg at %s", path))
	return NewWithSource(FFmpegSource(path), logger), nil
}

// NewWithSource creates an engine decoding through open.
func NewWithSource(open SourceFactory, logger ports.Logger) *Engine {
	return &Engine{
		prober: NewProber(logger),
		open:   open,
		logger: logger,
	}
}

func (e *Engine) Probe(ctx context.Context, uri string) (ports.AssetInfo, error) {
	return e.prober.Probe(ctx, uri)
}

// NewPipeline creates a pipeline in the Null state.
func (e *Engine) NewPipeline(comp ports.Composition, sink ports.SinkConfig) (ports.Pipeline, error) {
	if sink.Format != ports.PixelFormatRGBA {
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedSink, sink.Format)
	}
	if sink.Width <= 0 || sink.Height <= 0 || sink.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: %dx%d @ %g fps", ErrUnsupportedSink, sink.Width, sink.Height, sink.FrameRate)
	}
	return newPipeline(comp, sink, e.open, e.logger), nil
}

var _ ports.MediaEngine = (*Engine)(nil)
