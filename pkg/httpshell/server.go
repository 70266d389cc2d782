// Package httpshell is the HTTP front end of the editor. It turns requests
// into editor commands, streams preview frames as MJPEG and reports
// user-visible failures as server-sent events.
package httpshell

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/editor"
	"github.com/user/clipedit/pkg/framesink"
	"github.com/user/clipedit/pkg/ports"
	"github.com/user/clipedit/pkg/timeline"
)

// Editor is the part of editor.Processor the shell drives.
type Editor interface {
	Submit(cmd editor.Command) error
	Timeline(ctx context.Context) (timeline.Snapshot, error)
	Status(ctx context.Context) (editor.Status, error)
}

// Options configures the shell.
type Options struct {
	// StreamQuality is the JPEG quality of MJPEG frames.
	StreamQuality int
	// StreamBuffer is the number of undelivered frames held per preview.
	StreamBuffer int
	// StreamMaxWidth downscales wider frames before encoding. Zero keeps the size.
	StreamMaxWidth int
}

// Server serves the editor over HTTP.
type Server struct {
	editor   Editor
	renderer ports.Renderer
	opts     Options
	logger   ports.Logger

	frames *hub[[]byte]
	events *hub[failureEvent]

	// previewMu orders editor submission and channel swap of preview
	// start and stop so /stream follows the last queued session.
	previewMu sync.Mutex

	mu      sync.Mutex
	channel *framesink.Channel
	pumps   sync.WaitGroup
}

// New creates a shell for ed.
func New(ed Editor, renderer ports.Renderer, opts Options, logger ports.Logger) *Server {
	return &Server{
		editor:   ed,
		renderer: renderer,
		opts:     opts,
		logger:   logger.WithComponent("http"),
		frames:   newHub[[]byte](true),
		events:   newHub[failureEvent](false),
	}
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/clips", s.handleAddClip)
	mux.HandleFunc("POST /api/preview/start", s.handleStartPreview)
	mux.HandleFunc("POST /api/preview/stop", s.handleStopPreview)
	mux.HandleFunc("POST /api/seek", s.handleSeek)
	mux.HandleFunc("POST /api/playpause", s.handlePlayPause)
	mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /timeline.png", s.handleTimelineImage)
	mux.HandleFunc("GET /stream", s.handleStream)
	mux.HandleFunc("GET /events", s.handleEvents)
	return mux
}

// Close ends the current frame stream and waits for its encoder.
func (s *Server) Close() {
	s.swapChannel(nil)
	s.pumps.Wait()
}

type addClipRequest struct {
	Path       string `json:"path"`
	Layer      uint32 `json:"layer"`
	StartNs    int64  `json:"start_ns"`
	DurationNs int64  `json:"duration_ns"`
}

type seekRequest struct {
	PositionNs int64 `json:"position_ns"`
}

func (s *Server) handleAddClip(w http.ResponseWriter, r *http.Request) {
	var req addClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.submit(w, editor.AddClip{
		Path:     req.Path,
		Layer:    req.Layer,
		Start:    time.Duration(req.StartNs),
		Duration: time.Duration(req.DurationNs),
	})
}

func (s *Server) handleStartPreview(w http.ResponseWriter, r *http.Request) {
	s.previewMu.Lock()
	defer s.previewMu.Unlock()

	ch := framesink.NewChannel(s.opts.StreamBuffer)
	if !s.submit(w, editor.StartPreview{Sink: ch}) {
		ch.Close()
		return
	}
	s.swapChannel(ch)
}

func (s *Server) handleStopPreview(w http.ResponseWriter, r *http.Request) {
	s.previewMu.Lock()
	defer s.previewMu.Unlock()

	if s.submit(w, editor.StopPreview{}) {
		s.swapChannel(nil)
	}
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.submit(w, editor.SeekTo{Position: time.Duration(req.PositionNs)})
}

func (s *Server) handlePlayPause(w http.ResponseWriter, r *http.Request) {
	s.submit(w, editor.PlayPause{})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	snap, err := s.editor.Timeline(r.Context())
	if err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.editor.Status(r.Context())
	if err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleTimelineImage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.editor.Timeline(r.Context())
	if err != nil {
		s.unavailable(w, err)
		return
	}
	playhead := time.Duration(-1)
	if st, err := s.editor.Status(r.Context()); err == nil && st.Preview != nil && st.Preview.State.Active() {
		playhead = st.Preview.LastPTS
	}
	data, err := s.renderer.EncodeImage(drawTimeline(s.renderer, snap, playhead), ports.FormatPNG, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// submit queues cmd and answers 202, or 503 once the editor has shut down.
func (s *Server) submit(w http.ResponseWriter, cmd editor.Command) bool {
	if err := s.editor.Submit(cmd); err != nil {
		s.unavailable(w, err)
		return false
	}
	s.logger.Debug(l10n.F("Queued %s", cmd.Name()))
	w.WriteHeader(http.StatusAccepted)
	return true
}

func (s *Server) unavailable(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, editor.ErrClosed) {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
