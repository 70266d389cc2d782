package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_DebugOutputRoundTrip(t *testing.T) {
	fs := New()
	dir := t.TempDir()

	// debug frames land in per-session directories that do not exist yet
	path := filepath.Join(dir, "frames", "session", "frame-000001.png")
	if err := fs.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) != 4 || data[1] != 'P' {
		t.Errorf("unexpected contents %v", data)
	}
}

func TestFileSystem_Exists(t *testing.T) {
	fs := New()
	dir := t.TempDir()

	clip := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(clip, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	debugDir := filepath.Join(dir, "debug", "timeline")
	if err := fs.MkdirAll(debugDir); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{clip, true},
		{debugDir, true},
		{filepath.Join(dir, "missing.mp4"), false},
		{filepath.Join(dir, "missing", "clip.mp4"), false},
	}
	for _, tt := range tests {
		got, err := fs.Exists(tt.path)
		if err != nil {
			t.Errorf("Exists(%s) failed: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Exists(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFileSystem_Abs(t *testing.T) {
	fs := New()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}

	abs, err := fs.Abs(filepath.Join("clips", "..", "a.mp4"))
	if err != nil {
		t.Fatalf("Abs failed: %v", err)
	}
	if want := filepath.Join(wd, "a.mp4"); abs != want {
		t.Errorf("expected %s, got %s", want, abs)
	}

	abs, err = fs.Abs(wd)
	if err != nil {
		t.Fatalf("Abs failed: %v", err)
	}
	if abs != wd {
		t.Errorf("expected absolute path unchanged, got %s", abs)
	}
}
