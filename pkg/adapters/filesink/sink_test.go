package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/clipedit/pkg/mocks"
	"github.com/user/clipedit/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveTimelineJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`{"revision": 3}`)
	if err := sink.SaveTimelineJSON(3, data); err != nil {
		t.Fatalf("SaveTimelineJSON failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "timeline", "rev-000003.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	var format ports.ImageFormat = -1
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, f ports.ImageFormat, quality int) ([]byte, error) {
			format = f
			return []byte("png"), nil
		},
	}
	sink := New(testBaseDir, fs, renderer)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := sink.SaveFrame("s1", 30, img); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	if format != ports.FormatPNG {
		t.Errorf("expected PNG encoding, got %v", format)
	}
	expectedPath := filepath.Join(testBaseDir, "frames", "s1", "frame-000030.png")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
}

func TestSink_SaveFrameEncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(image.Image, ports.ImageFormat, int) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveFrame("s1", 1, image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Fatal("expected error")
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Error("expected no files to be written")
	}
}
