package ffengine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/clipedit/pkg/mocks"
	"github.com/user/clipedit/pkg/ports"
)

func TestEngine_NewPipelineValidatesSink(t *testing.T) {
	e := NewWithSource(newFakeFactory().open, mocks.NewLogger())

	tests := []struct {
		name string
		sink ports.SinkConfig
	}{
		{"format", ports.SinkConfig{Format: "I420", Width: 4, Height: 2, FrameRate: 10}},
		{"width", ports.SinkConfig{Format: ports.PixelFormatRGBA, Width: 0, Height: 2, FrameRate: 10}},
		{"fps", ports.SinkConfig{Format: ports.PixelFormatRGBA, Width: 4, Height: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.NewPipeline(twoLayerComposition(), tt.sink)
			if !errors.Is(err, ErrUnsupportedSink) {
				t.Errorf("expected ErrUnsupportedSink, got %v", err)
			}
		})
	}

	p, err := e.NewPipeline(twoLayerComposition(), ports.SinkConfig{Format: ports.PixelFormatRGBA, Width: 4, Height: 2, FrameRate: 10})
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	defer p.Close()
	if p.State() != ports.StateNull {
		t.Errorf("expected new pipeline in null state, got %s", p.State())
	}
}

func TestFindFFmpeg_CustomPathMissing(t *testing.T) {
	_, err := FindFFmpeg(filepath.Join(t.TempDir(), "no-ffmpeg"))
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
}

func TestFindFFmpeg_CustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, nil, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := FindFFmpeg(path)
	if err != nil || got != path {
		t.Errorf("expected %s, got %s (%v)", path, got, err)
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := strings.Join(ffmpegArgs(SourceSpec{Path: "/a.mp4", Offset: 1500 * time.Millisecond, Width: 640, Height: 360, FrameRate: 29.97}), " ")

	for _, want := range []string{
		"-ss 1.500 ",
		"-i /a.mp4 ",
		"-pix_fmt rgba ",
		"-f rawvideo ",
		"scale=640:360:force_original_aspect_ratio=decrease,pad=640:360:(ow-iw)/2:(oh-ih)/2,fps=29.97",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("expected %q in %q", want, args)
		}
	}
}

// testMovie builds a movie with one video track and one audio track.
func testMovie() *mp4.InitSegment {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(30000, "video", "und")
	video := init.Moov.Traks[0]
	video.Tkhd.Width = mp4.Fixed32(640 << 16)
	video.Tkhd.Height = mp4.Fixed32(360 << 16)
	init.AddEmptyTrack(48000, "audio", "und")

	init.Moov.Mvhd.Timescale = 1000
	init.Moov.Mvhd.Duration = 5000
	return init
}

func TestDescribeMoov(t *testing.T) {
	movie := testMovie()
	stsd := movie.Moov.Traks[0].Mdia.Minf.Stbl.Stsd
	stsd.AddChild(mp4.CreateVisualSampleEntryBox("av01", 640, 360, &mp4.Av1CBox{}))

	info := describeMoov(movie.Moov)

	if info.Duration != 5*time.Second {
		t.Errorf("expected 5s, got %s", info.Duration)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("expected video and audio, got %+v", info)
	}
	if info.VideoCodec != "av1" {
		t.Errorf("expected av1, got %s", info.VideoCodec)
	}
	if info.Width != 640 || info.Height != 360 {
		t.Errorf("expected 640x360, got %dx%d", info.Width, info.Height)
	}
}

func TestProber_MP4File(t *testing.T) {
	var buf bytes.Buffer
	if err := testMovie().Encode(&buf); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewProber(mocks.NewLogger())
	p.fallback = func(string) (ports.AssetInfo, error) {
		return ports.AssetInfo{}, errors.New("fallback should not run")
	}

	info, err := p.Probe(context.Background(), "file://"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Container != "mp4" || info.Duration != 5*time.Second {
		t.Errorf("unexpected info %+v", info)
	}
	if !info.HasVideo || !info.HasAudio || info.Width != 640 {
		t.Errorf("unexpected streams %+v", info)
	}
}

func TestProber_Fallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("not an mp4"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewProber(mocks.NewLogger())
	var probed string
	p.fallback = func(path string) (ports.AssetInfo, error) {
		probed = path
		return ports.AssetInfo{Container: "webm", Duration: time.Second, HasVideo: true}, nil
	}

	uri := "file://" + filepath.ToSlash(path)
	info, err := p.Probe(context.Background(), uri)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if probed != path {
		t.Errorf("expected fallback for %s, got %s", path, probed)
	}
	if info.URI != uri || info.Container != "webm" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestProber_RejectsNonFileURI(t *testing.T) {
	p := NewProber(mocks.NewLogger())
	_, err := p.Probe(context.Background(), "https://example.com/a.mp4")
	if !errors.Is(err, ErrUnsupportedURI) {
		t.Errorf("expected ErrUnsupportedURI, got %v", err)
	}
}

func TestProber_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProber(mocks.NewLogger()).Probe(ctx, "file:///a.mp4"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
