package ffengine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/ideamans/go-l10n"
	"golang.org/x/image/draw"

	"github.com/user/clipedit/pkg/mediauri"
	"github.com/user/clipedit/pkg/ports"
)

// maxSkip is how far ahead a clip reader decodes sequentially before it is
// restarted at the target position instead.
const maxSkip = time.Second

// clipReader follows one clip. pos is the clip-local time of the next frame,
// n frames after the decoder's start offset base.
type clipReader struct {
	src  FrameSource
	base time.Duration
	n    int64
	pos  time.Duration
	last *image.RGBA
	done bool
}

func (r *clipReader) advance(fps float64) {
	r.n++
	r.pos = r.base + framePTS(r.n, fps)
}

func (r *clipReader) close() {
	if r.src != nil {
		r.src.Close()
	}
}

// compositor renders timeline positions into RGBA frames. It is used by one
// goroutine only.
type compositor struct {
	ctx    context.Context
	open   SourceFactory
	rect   image.Rectangle
	fps    float64
	step   time.Duration
	logger ports.Logger

	readers map[string]*clipReader
	opens   int
}

func newCompositor(ctx context.Context, open SourceFactory, sink ports.SinkConfig, logger ports.Logger) *compositor {
	return &compositor{
		ctx:     ctx,
		open:    open,
		rect:    image.Rect(0, 0, sink.Width, sink.Height),
		fps:     sinkRate(sink.FrameRate),
		step:    frameDuration(sink.FrameRate),
		logger:  logger,
		readers: make(map[string]*clipReader),
	}
}

// Render composites every video clip active at position. Layers are drawn
// from the highest priority to priority 0, so lower priorities end up on top.
func (c *compositor) Render(comp ports.Composition, position time.Duration) *image.RGBA {
	dst := image.NewRGBA(c.rect)
	draw.Draw(dst, c.rect, image.NewUniform(color.Black), image.Point{}, draw.Src)

	live := make(map[string]bool)
	for i := len(comp.Layers) - 1; i >= 0; i-- {
		for _, clip := range comp.Layers[i].Clips {
			if !clip.Tracks.Has(ports.TrackVideo) || !clip.Asset.HasVideo {
				continue
			}
			if position < clip.Start || position >= clip.End() {
				continue
			}
			live[clip.ID] = true
			if img := c.frame(clip, position-clip.Start); img != nil {
				draw.Draw(dst, c.rect, img, image.Point{}, draw.Over)
			}
		}
	}

	for id, r := range c.readers {
		if !live[id] {
			r.close()
			delete(c.readers, id)
		}
	}
	return dst
}

func (c *compositor) frame(clip ports.CompositionClip, local time.Duration) *image.RGBA {
	r := c.readers[clip.ID]
	if r == nil || local < r.pos-c.step || local > r.pos+maxSkip {
		if r != nil {
			r.close()
		}
		r = c.start(clip, local)
		c.readers[clip.ID] = r
	}

	for !r.done && r.pos <= local {
		img, err := r.src.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Warn(l10n.F("Decoding %s failed: %s", clip.URI, err))
			}
			r.done = true
			break
		}
		r.last = img
		r.advance(c.fps)
	}
	return r.last
}

func (c *compositor) start(clip ports.CompositionClip, local time.Duration) *clipReader {
	path, err := mediauri.ToPath(clip.URI)
	if err != nil {
		c.logger.Warn(l10n.F("Cannot decode %s: %s", clip.URI, err))
		return &clipReader{base: local, pos: local, done: true}
	}

	c.opens++
	src, err := c.open(c.ctx, SourceSpec{
		Path:      path,
		Offset:    clip.InPoint + local,
		Width:     c.rect.Dx(),
		Height:    c.rect.Dy(),
		FrameRate: c.fps,
	})
	if err != nil {
		c.logger.Warn(l10n.F("Cannot decode %s: %s", clip.URI, err))
		return &clipReader{base: local, pos: local, done: true}
	}
	return &clipReader{src: src, base: local, pos: local}
}

// Close stops all decoders.
func (c *compositor) Close() {
	for id, r := range c.readers {
		r.close()
		delete(c.readers, id)
	}
}

// frameIndex returns the index of the frame at or before position. The slack
// absorbs float rounding on exact boundaries.
func frameIndex(position time.Duration, fps float64) int64 {
	return int64(math.Floor(float64(position)*fps/float64(time.Second) + 1e-6))
}

// framePTS returns the start time of frame idx, rounded to the nanosecond.
func framePTS(idx int64, fps float64) time.Duration {
	return time.Duration(math.Round(float64(idx) * float64(time.Second) / fps))
}

// sinkRate returns fps, or 30 when it is not positive.
func sinkRate(fps float64) float64 {
	if fps <= 0 {
		return 30
	}
	return fps
}

// frameDuration is the nominal frame interval, used for scheduling only.
func frameDuration(fps float64) time.Duration {
	return time.Duration(float64(time.Second) / sinkRate(fps))
}
