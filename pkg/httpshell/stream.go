package httpshell

import (
	"encoding/json"
	"fmt"
	"image"
	"net/http"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/editor"
	"github.com/user/clipedit/pkg/framesink"
	"github.com/user/clipedit/pkg/ports"
)

type failureEvent struct {
	Command string      `json:"command"`
	Kind    editor.Kind `json:"kind"`
	Message string      `json:"message"`
}

// ReportFailure publishes f to /events subscribers. It never blocks and is
// meant as editor.Options.OnFailure.
func (s *Server) ReportFailure(f editor.Failure) {
	s.events.publish(failureEvent{Command: f.Command, Kind: f.Kind, Message: f.Message})
}

// swapChannel makes ch the frame source of /stream and closes the previous one.
func (s *Server) swapChannel(ch *framesink.Channel) {
	s.mu.Lock()
	old := s.channel
	s.channel = ch
	s.frames.reset()
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if ch != nil {
		s.pumps.Add(1)
		go s.pump(ch)
	}
}

// pump encodes frames of one preview to JPEG until its channel is closed.
func (s *Server) pump(ch *framesink.Channel) {
	defer s.pumps.Done()
	for frame := range ch.Frames() {
		img, ok := framesink.Image(frame)
		if !ok {
			continue
		}
		data, err := s.renderer.EncodeImage(s.scale(img), ports.FormatJPEG, s.opts.StreamQuality)
		if err != nil {
			s.logger.Warn(l10n.F("Failed to encode frame %d: %s", frame.Seq, err))
			continue
		}
		s.mu.Lock()
		if s.channel == ch {
			s.frames.publish(data)
		}
		s.mu.Unlock()
	}
}

func (s *Server) scale(img image.Image) image.Image {
	b := img.Bounds()
	if s.opts.StreamMaxWidth <= 0 || b.Dx() <= s.opts.StreamMaxWidth {
		return img
	}
	h := b.Dy() * s.opts.StreamMaxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	return s.renderer.ResizeImage(img, s.opts.StreamMaxWidth, h)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")

	ch, last, ok := s.frames.subscribe()
	defer s.frames.unsubscribe(ch)

	if ok {
		if err := writeFrame(w, last); err != nil {
			return
		}
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case img := <-ch:
			if err := writeFrame(w, img); err != nil {
				return
			}
		}
	}
}

func writeFrame(w http.ResponseWriter, img []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(img)); err != nil {
		return err
	}
	if _, err := w.Write(img); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\r\n")); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, _, _ := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			if err := sendEvent(w, ev); err != nil {
				return
			}
		}
	}
}

func sendEvent(w http.ResponseWriter, ev failureEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: failure\ndata: %s\n\n", b); err != nil {
		return err
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
