package timeline

import "time"

// Snapshot is a serializable copy of the timeline for inspection and debugging.
type Snapshot struct {
	Revision uint64          `json:"revision"`
	Duration time.Duration   `json:"durationNs"`
	Tracks   []string        `json:"tracks"`
	Layers   []LayerSnapshot `json:"layers"`
}

// LayerSnapshot is a serializable copy of a layer.
type LayerSnapshot struct {
	Priority uint32         `json:"priority"`
	Clips    []ClipSnapshot `json:"clips"`
}

// ClipSnapshot is a serializable copy of a clip.
type ClipSnapshot struct {
	ID       string        `json:"id"`
	URI      string        `json:"uri"`
	Start    time.Duration `json:"startNs"`
	InPoint  time.Duration `json:"inPointNs"`
	Duration time.Duration `json:"durationNs"`
	Tracks   string        `json:"tracks"`
}

// ClipCount returns the number of clips in the snapshot.
func (s Snapshot) ClipCount() int {
	n := 0
	for _, l := range s.Layers {
		n += len(l.Clips)
	}
	return n
}

// Layer returns the snapshot of the layer at priority.
func (s Snapshot) Layer(priority uint32) (LayerSnapshot, bool) {
	for _, l := range s.Layers {
		if l.Priority == priority {
			return l, true
		}
	}
	return LayerSnapshot{}, false
}

// Snapshot copies the current timeline state.
func (t *Timeline) Snapshot() Snapshot {
	s := Snapshot{
		Revision: t.revision,
		Duration: t.Duration(),
		Layers:   make([]LayerSnapshot, 0, len(t.order)),
	}
	for _, tr := range t.Tracks() {
		s.Tracks = append(s.Tracks, tr.String())
	}
	for _, l := range t.Layers() {
		ls := LayerSnapshot{Priority: l.priority, Clips: make([]ClipSnapshot, 0, len(l.clips))}
		for _, c := range l.clips {
			ls.Clips = append(ls.Clips, ClipSnapshot{
				ID:       string(c.ID),
				URI:      c.Asset.URI(),
				Start:    c.Start,
				InPoint:  c.InPoint,
				Duration: c.Duration,
				Tracks:   c.Tracks.String(),
			})
		}
		s.Layers = append(s.Layers, ls)
	}
	return s
}
