// Package timeline holds the in-memory edit timeline: priority-ordered layers of clips.
//
// A Timeline owns no playback state and is not safe for concurrent use.
// The editor's command loop is its only writer and reader.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/user/clipedit/pkg/asset"
	"github.com/user/clipedit/pkg/ports"
)

var (
	// ErrInvalidPlacement is returned for a clip with a non-positive duration,
	// a negative start, no asset or no tracks.
	ErrInvalidPlacement = errors.New("timeline: invalid clip placement")

	// ErrLayerAccess is returned when a layer cannot be obtained or created.
	ErrLayerAccess = errors.New("timeline: layer not accessible")
)

// NoLayerPriority is reserved to mean "not on any layer" and cannot be used.
const NoLayerPriority uint32 = math.MaxUint32

// ClipID identifies a clip within a timeline.
type ClipID string

// Clip is a timed placement of an asset on a layer. Clips are never mutated.
type Clip struct {
	ID       ClipID
	Asset    *asset.Asset
	Layer    uint32
	Start    time.Duration
	InPoint  time.Duration
	Duration time.Duration
	Tracks   ports.TrackType
}

// End returns the timeline position right after the clip.
func (c Clip) End() time.Duration {
	return c.Start + c.Duration
}

// Layer is a priority-ordered container of clips.
type Layer struct {
	priority uint32
	clips    []Clip
}

// Priority returns the layer priority. Lower values are composited on top.
func (l *Layer) Priority() uint32 { return l.priority }

// Clips returns the layer's clips in insertion order.
func (l *Layer) Clips() []Clip {
	return append([]Clip(nil), l.clips...)
}

// Len returns the number of clips on the layer.
func (l *Layer) Len() int { return len(l.clips) }

// Timeline is the single edited program: layers, clips and a fixed
// one-video-track/one-audio-track topology.
type Timeline struct {
	layers   map[uint32]*Layer
	order    []uint32
	clips    int
	revision uint64
	newID    func() ClipID
}

// New creates an empty audio/video timeline.
func New() *Timeline {
	return &Timeline{
		layers: make(map[uint32]*Layer),
		newID:  newClipID,
	}
}

func newClipID() ClipID {
	id, err := uuid.NewV7()
	if err != nil {
		return ClipID(uuid.NewString())
	}
	return ClipID(id.String())
}

// Tracks returns the fixed track topology.
func (t *Timeline) Tracks() []ports.TrackType {
	return []ports.TrackType{ports.TrackVideo, ports.TrackAudio}
}

// Layer returns the layer at priority, creating an empty one if needed.
func (t *Timeline) Layer(priority uint32) (*Layer, error) {
	if priority == NoLayerPriority {
		return nil, fmt.Errorf("%w: priority %d is reserved", ErrLayerAccess, priority)
	}
	if l, ok := t.layers[priority]; ok {
		return l, nil
	}

	l := &Layer{priority: priority}
	t.layers[priority] = l
	i := sort.Search(len(t.order), func(i int) bool { return t.order[i] >= priority })
	t.order = append(t.order, 0)
	copy(t.order[i+1:], t.order[i:])
	t.order[i] = priority
	t.revision++
	return l, nil
}

// HasLayer reports whether a layer exists at priority.
func (t *Timeline) HasLayer(priority uint32) bool {
	_, ok := t.layers[priority]
	return ok
}

// ValidatePlacement checks clip placement values without touching any timeline.
func ValidatePlacement(start, duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("%w: duration %d must be positive", ErrInvalidPlacement, duration)
	}
	if start < 0 {
		return fmt.Errorf("%w: start %d must not be negative", ErrInvalidPlacement, start)
	}
	if start > math.MaxInt64-duration {
		return fmt.Errorf("%w: clip end overflows (start %d, duration %d)", ErrInvalidPlacement, start, duration)
	}
	return nil
}

// AddClip places a on the layer at priority. The in-point is always zero and
// overlaps with other clips are allowed. Nothing changes when it fails.
func (t *Timeline) AddClip(priority uint32, a *asset.Asset, start, duration time.Duration, tracks ports.TrackType) (ClipID, error) {
	if err := ValidatePlacement(start, duration); err != nil {
		return "", err
	}
	if a == nil {
		return "", fmt.Errorf("%w: no asset", ErrInvalidPlacement)
	}
	if tracks&(ports.TrackVideo|ports.TrackAudio) == 0 {
		return "", fmt.Errorf("%w: no tracks", ErrInvalidPlacement)
	}

	l, err := t.Layer(priority)
	if err != nil {
		return "", err
	}

	c := Clip{
		ID:       t.newID(),
		Asset:    a,
		Layer:    priority,
		Start:    start,
		Duration: duration,
		Tracks:   tracks & (ports.TrackVideo | ports.TrackAudio),
	}
	l.clips = append(l.clips, c)
	t.clips++
	t.revision++
	return c.ID, nil
}

// Layers returns the layers in ascending priority order.
func (t *Timeline) Layers() []*Layer {
	out := make([]*Layer, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.layers[p])
	}
	return out
}

// LayerCount returns the number of layers.
func (t *Timeline) LayerCount() int { return len(t.order) }

// ClipCount returns the number of clips across all layers.
func (t *Timeline) ClipCount() int { return t.clips }

// Revision increases with every committed change.
func (t *Timeline) Revision() uint64 { return t.revision }

// Duration returns the end of the last clip.
func (t *Timeline) Duration() time.Duration {
	var d time.Duration
	for _, l := range t.layers {
		for _, c := range l.clips {
			if c.End() > d {
				d = c.End()
			}
		}
	}
	return d
}

// Composition returns the immutable view the media engine renders.
func (t *Timeline) Composition() ports.Composition {
	comp := ports.Composition{
		Revision: t.revision,
		Duration: t.Duration(),
		Layers:   make([]ports.CompositionLayer, 0, len(t.order)),
	}
	for _, l := range t.Layers() {
		cl := ports.CompositionLayer{
			Priority: l.priority,
			Clips:    make([]ports.CompositionClip, 0, len(l.clips)),
		}
		for _, c := range l.clips {
			cl.Clips = append(cl.Clips, ports.CompositionClip{
				ID:       string(c.ID),
				URI:      c.Asset.URI(),
				Start:    c.Start,
				InPoint:  c.InPoint,
				Duration: c.Duration,
				Tracks:   c.Tracks,
				Asset:    c.Asset.Info(),
			})
		}
		comp.Layers = append(comp.Layers, cl)
	}
	return comp
}
