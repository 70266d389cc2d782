package ffengine

import (
	"errors"
	"testing"
	"time"

	"github.com/user/clipedit/pkg/mocks"
	"github.com/user/clipedit/pkg/ports"
)

type frameRecord struct {
	pts    time.Duration
	width  int
	height int
	size   int
}

// recorder is a sample callback collecting frames and end-of-stream signals.
type recorder struct {
	frames chan frameRecord
	eos    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{
		frames: make(chan frameRecord, 256),
		eos:    make(chan struct{}, 16),
	}
}

func (r *recorder) callback(src ports.SampleSource) ports.FlowReturn {
	s, ok := src.PullSample()
	if !ok {
		select {
		case r.eos <- struct{}{}:
		default:
		}
		return ports.FlowEOS
	}
	data, err := s.Buffer.Map()
	if err != nil {
		return ports.FlowError
	}
	select {
	case r.frames <- frameRecord{pts: s.PTS, width: s.Caps.Width, height: s.Caps.Height, size: len(data)}:
	default:
	}
	return ports.FlowOK
}

func (r *recorder) next(t *testing.T) frameRecord {
	t.Helper()
	select {
	case f := <-r.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return frameRecord{}
	}
}

func (r *recorder) drain() {
	for {
		select {
		case <-r.frames:
		default:
			return
		}
	}
}

func newTestPipeline(t *testing.T, comp ports.Composition) (*pipeline, *fakeFactory) {
	t.Helper()
	return newTestPipelineAt(t, comp, 100)
}

func newTestPipelineAt(t *testing.T, comp ports.Composition, fps float64) (*pipeline, *fakeFactory) {
	t.Helper()
	f := newFakeFactory()
	sink := ports.SinkConfig{Format: ports.PixelFormatRGBA, Width: 4, Height: 2, FrameRate: fps}
	p := newPipeline(comp, sink, f.open, mocks.NewLogger())
	t.Cleanup(func() { p.Close() })
	return p, f
}

func TestPipeline_Playing(t *testing.T) {
	p, _ := newTestPipeline(t, twoLayerComposition())
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)

	if err := p.SetState(ports.StatePlaying); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if p.State() != ports.StatePlaying {
		t.Errorf("expected playing, got %s", p.State())
	}

	for i := 0; i < 3; i++ {
		f := rec.next(t)
		if want := time.Duration(i) * 10 * time.Millisecond; f.pts != want {
			t.Errorf("frame %d: expected pts %s, got %s", i, want, f.pts)
		}
		if f.width != 4 || f.height != 2 || f.size != 4*2*4 {
			t.Errorf("frame %d: unexpected geometry %+v", i, f)
		}
	}
}

func TestPipeline_FrameTimesAt30FPS(t *testing.T) {
	p, _ := newTestPipelineAt(t, twoLayerComposition(), 30)
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)

	if err := p.SetState(ports.StatePlaying); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	for i, want := range []time.Duration{0, 33333333, 66666667} {
		if f := rec.next(t); f.pts != want {
			t.Errorf("frame %d: expected pts %d, got %d", i, want, f.pts)
		}
	}

	if err := p.SetState(ports.StatePaused); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	rec.drain()

	flags := ports.SeekFlush | ports.SeekKeyUnit | ports.SeekSnapBefore
	tests := []struct {
		seek time.Duration
		want time.Duration
	}{
		{2 * time.Second, 2 * time.Second},
		{2050 * time.Millisecond, 2033333333},
		{time.Second / 30, 33333333},
	}
	for _, tt := range tests {
		if err := p.Seek(tt.seek, flags); err != nil {
			t.Fatalf("Seek(%s) failed: %v", tt.seek, err)
		}
		if f := rec.next(t); f.pts != tt.want {
			t.Errorf("seek to %d: expected pts %d, got %d", tt.seek, tt.want, f.pts)
		}
	}
}

func TestFrameIndex(t *testing.T) {
	tests := []struct {
		position time.Duration
		fps      float64
		want     int64
	}{
		{0, 30, 0},
		{2 * time.Second, 30, 60},
		{1999999980, 30, 60},
		{33333333, 30, 1},
		{33333300, 30, 0},
		{time.Hour, 30, 108000},
		{1001 * time.Millisecond, 30000.0 / 1001, 30},
	}
	for _, tt := range tests {
		if got := frameIndex(tt.position, tt.fps); got != tt.want {
			t.Errorf("frameIndex(%d, %g) = %d, want %d", tt.position, tt.fps, got, tt.want)
		}
		if got := frameIndex(framePTS(tt.want, tt.fps), tt.fps); got != tt.want {
			t.Errorf("frameIndex(framePTS(%d)) = %d", tt.want, got)
		}
	}
}

func TestPipeline_NoFramesBeforePlaying(t *testing.T) {
	p, _ := newTestPipeline(t, twoLayerComposition())
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)

	if err := p.SetState(ports.StateReady); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if len(rec.frames) != 0 {
		t.Errorf("expected no frames in ready state, got %d", len(rec.frames))
	}
}

func TestPipeline_PausedSeekPrerolls(t *testing.T) {
	p, _ := newTestPipeline(t, twoLayerComposition())
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)

	if err := p.SetState(ports.StatePlaying); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	rec.next(t)
	if err := p.SetState(ports.StatePaused); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	rec.drain()

	flags := ports.SeekFlush | ports.SeekKeyUnit | ports.SeekSnapBefore
	if err := p.Seek(1234*time.Millisecond, flags); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	f := rec.next(t)
	if f.pts != 1230*time.Millisecond {
		t.Errorf("expected snapped pts 1.23s, got %s", f.pts)
	}

	time.Sleep(50 * time.Millisecond)
	if len(rec.frames) != 0 {
		t.Errorf("expected a single preroll frame while paused, got %d more", len(rec.frames))
	}
}

func TestPipeline_SeekWhilePlaying(t *testing.T) {
	p, _ := newTestPipeline(t, twoLayerComposition())
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)
	p.SetState(ports.StatePlaying)
	rec.next(t)

	if err := p.Seek(2*time.Second, ports.SeekFlush|ports.SeekSnapBefore); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-rec.frames:
			if f.pts >= 2*time.Second {
				return
			}
		case <-deadline:
			t.Fatal("no frame at or after the seek target")
		}
	}
}

func TestPipeline_SeekRequiresPreroll(t *testing.T) {
	p, _ := newTestPipeline(t, twoLayerComposition())

	if err := p.Seek(time.Second, ports.SeekFlush); !errors.Is(err, ErrNotSeekable) {
		t.Errorf("expected ErrNotSeekable in null state, got %v", err)
	}

	p.SetState(ports.StatePaused)
	if err := p.Seek(-time.Second, ports.SeekFlush); !errors.Is(err, ErrNotSeekable) {
		t.Errorf("expected ErrNotSeekable for negative position, got %v", err)
	}
}

func TestPipeline_EndOfStream(t *testing.T) {
	comp := twoLayerComposition()
	comp.Duration = 30 * time.Millisecond
	p, _ := newTestPipeline(t, comp)
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)
	p.SetState(ports.StatePlaying)

	select {
	case <-rec.eos:
	case <-time.After(2 * time.Second):
		t.Fatal("expected end of stream")
	}
	if got := len(rec.frames); got != 3 {
		t.Errorf("expected 3 frames before end of stream, got %d", got)
	}

	// a longer composition resumes playback
	rec.drain()
	comp.Duration = 5 * time.Second
	if err := p.Commit(comp); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if f := rec.next(t); f.pts < 30*time.Millisecond {
		t.Errorf("expected playback to resume at 30ms, got %s", f.pts)
	}
}

func TestPipeline_Close(t *testing.T) {
	p, f := newTestPipeline(t, twoLayerComposition())
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)
	p.SetState(ports.StatePlaying)
	rec.next(t)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	rec.drain()
	time.Sleep(30 * time.Millisecond)

	if len(rec.frames) != 0 {
		t.Error("expected no frames after Close")
	}
	if !f.AllClosed() {
		t.Error("expected decoders to be closed")
	}
	if err := p.SetState(ports.StatePlaying); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestPipeline_NullRewinds(t *testing.T) {
	p, _ := newTestPipeline(t, twoLayerComposition())
	rec := newRecorder()
	p.SetNewSampleCallback(rec.callback)
	p.SetState(ports.StatePlaying)
	rec.next(t)
	rec.next(t)

	p.SetState(ports.StateNull)
	time.Sleep(30 * time.Millisecond)
	rec.drain()
	p.SetState(ports.StatePlaying)
	if f := rec.next(t); f.pts != 0 {
		t.Errorf("expected playback from 0 after null, got %s", f.pts)
	}
}

func TestPipeline_InvalidState(t *testing.T) {
	p, _ := newTestPipeline(t, twoLayerComposition())
	if err := p.SetState(ports.PipelineState(42)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}
