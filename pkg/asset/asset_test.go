package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/clipedit/pkg/adapters/logger"
	"github.com/user/clipedit/pkg/mocks"
	"github.com/user/clipedit/pkg/ports"
)

func newResolver(t *testing.T) (*Resolver, *mocks.FileSystem, *mocks.Engine) {
	t.Helper()
	fs := mocks.NewFileSystem()
	engine := mocks.NewEngine()
	return NewResolver(fs, engine, logger.NewNoop()), fs, engine
}

func TestResolver_Resolve(t *testing.T) {
	r, fs, engine := newResolver(t)
	fs.AddFile("/tmp/a.mp4", []byte("data"))

	a, err := r.Resolve(context.Background(), "/tmp/a.mp4")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if a.URI() != "file:///tmp/a.mp4" {
		t.Errorf("expected file URI, got %s", a.URI())
	}
	if a.Path() != "/tmp/a.mp4" {
		t.Errorf("expected path /tmp/a.mp4, got %s", a.Path())
	}
	if a.Duration() != 10*time.Second {
		t.Errorf("expected 10s duration, got %s", a.Duration())
	}
	if len(engine.ProbeCalls) != 1 {
		t.Errorf("expected 1 probe, got %d", len(engine.ProbeCalls))
	}
}

func TestResolver_RelativePath(t *testing.T) {
	r, fs, _ := newResolver(t)
	fs.AddFile("/work/clips/b.mov", nil)

	a, err := r.Resolve(context.Background(), "clips/b.mov")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if a.URI() != "file:///work/clips/b.mov" {
		t.Errorf("unexpected URI %s", a.URI())
	}
}

func TestResolver_SharesAssets(t *testing.T) {
	r, fs, engine := newResolver(t)
	fs.AddFile("/tmp/a.mp4", nil)

	first, err := r.Resolve(context.Background(), "/tmp/a.mp4")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	second, err := r.Resolve(context.Background(), "/tmp/../tmp/a.mp4")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if first != second {
		t.Error("expected the same asset handle for the same file")
	}
	if len(engine.ProbeCalls) != 1 {
		t.Errorf("expected a single probe, got %d", len(engine.ProbeCalls))
	}
	if r.Cached() != 1 {
		t.Errorf("expected 1 cached asset, got %d", r.Cached())
	}
}

func TestResolver_PathNotFound(t *testing.T) {
	r, _, engine := newResolver(t)

	for _, path := range []string{"", "/tmp/missing.mp4"} {
		_, err := r.Resolve(context.Background(), path)
		if !errors.Is(err, ErrPathNotFound) {
			t.Errorf("Resolve(%q): expected ErrPathNotFound, got %v", path, err)
		}
	}
	if len(engine.ProbeCalls) != 0 {
		t.Error("engine must not be probed for missing paths")
	}
}

func TestResolver_ExistsError(t *testing.T) {
	r, fs, _ := newResolver(t)
	fs.ExistsFunc = func(path string) (bool, error) {
		return false, errors.New("permission denied")
	}

	_, err := r.Resolve(context.Background(), "/tmp/a.mp4")
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func TestResolver_ProbeFailures(t *testing.T) {
	tests := []struct {
		name  string
		probe func(ctx context.Context, uri string) (ports.AssetInfo, error)
	}{
		{
			name: "engine error",
			probe: func(ctx context.Context, uri string) (ports.AssetInfo, error) {
				return ports.AssetInfo{}, errors.New("unknown container")
			},
		},
		{
			name: "zero duration",
			probe: func(ctx context.Context, uri string) (ports.AssetInfo, error) {
				return ports.AssetInfo{HasVideo: true}, nil
			},
		},
		{
			name: "no streams",
			probe: func(ctx context.Context, uri string) (ports.AssetInfo, error) {
				return ports.AssetInfo{Duration: time.Second}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fs, engine := newResolver(t)
			fs.AddFile("/tmp/a.mp4", nil)
			engine.ProbeFunc = tt.probe

			_, err := r.Resolve(context.Background(), "/tmp/a.mp4")
			if !errors.Is(err, ErrProbeFailed) {
				t.Errorf("expected ErrProbeFailed, got %v", err)
			}
			if r.Cached() != 0 {
				t.Error("failed probes must not be cached")
			}
		})
	}
}
