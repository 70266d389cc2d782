package ffengine

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/user/clipedit/pkg/ports"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

type fakeSource struct {
	c      color.RGBA
	rect   image.Rectangle
	limit  int
	n      int
	closed bool
}

func (s *fakeSource) Next() (*image.RGBA, error) {
	if s.limit > 0 && s.n >= s.limit {
		return nil, io.EOF
	}
	s.n++
	img := image.NewRGBA(s.rect)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = s.c.R, s.c.G, s.c.B, s.c.A
	}
	return img, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

// fakeFactory hands out solid-color sources chosen by file path.
type fakeFactory struct {
	mu      sync.Mutex
	colors  map[string]color.RGBA
	limit   int
	specs   []SourceSpec
	sources []*fakeSource
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{colors: map[string]color.RGBA{
		"/a.mp4": red,
		"/b.mp4": blue,
	}}
}

func (f *fakeFactory) open(ctx context.Context, spec SourceSpec) (FrameSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeSource{
		c:     f.colors[spec.Path],
		rect:  image.Rect(0, 0, spec.Width, spec.Height),
		limit: f.limit,
	}
	f.specs = append(f.specs, spec)
	f.sources = append(f.sources, s)
	return s, nil
}

func (f *fakeFactory) Specs() []SourceSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SourceSpec(nil), f.specs...)
}

func (f *fakeFactory) AllClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sources {
		if !s.closed {
			return false
		}
	}
	return true
}

func videoClip(id, uri string, start, duration time.Duration) ports.CompositionClip {
	return ports.CompositionClip{
		ID:       id,
		URI:      uri,
		Start:    start,
		Duration: duration,
		Tracks:   ports.TrackVideo | ports.TrackAudio,
		Asset:    ports.AssetInfo{URI: uri, Duration: duration, HasVideo: true, HasAudio: true},
	}
}

func twoLayerComposition() ports.Composition {
	return ports.Composition{
		Revision: 1,
		Duration: 5 * time.Second,
		Layers: []ports.CompositionLayer{
			{Priority: 0, Clips: []ports.CompositionClip{videoClip("top", "file:///a.mp4", 0, 2*time.Second)}},
			{Priority: 1, Clips: []ports.CompositionClip{videoClip("bottom", "file:///b.mp4", 0, 5*time.Second)}},
		},
	}
}
