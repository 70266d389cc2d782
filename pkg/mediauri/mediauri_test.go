package mediauri

import (
	"errors"
	"runtime"
	"testing"
)

func TestFromNative(t *testing.T) {
	tests := []struct {
		name string
		path string
		sep  byte
		want string
	}{
		{"unix", "/tmp/a.mp4", '/', "file:///tmp/a.mp4"},
		{"unix with space", "/home/me/My Clips/b.mov", '/', "file:///home/me/My%20Clips/b.mov"},
		{"windows drive", `C:\Videos\a.mp4`, '\\', "file:///C:/Videos/a.mp4"},
		{"windows drive with space", `D:\My Clips\b.mkv`, '\\', "file:///D:/My%20Clips/b.mkv"},
		{"windows unc", `\\server\share\c.mp4`, '\\', "file://server/share/c.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromNative(tt.path, tt.sep)
			if got != tt.want {
				t.Errorf("fromNative(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFromPath_Errors(t *testing.T) {
	if _, err := FromPath(""); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
	if _, err := FromPath("clips/a.mp4"); !errors.Is(err, ErrRelativePath) {
		t.Errorf("expected ErrRelativePath, got %v", err)
	}
}

func TestFromPathToPath_Unix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths only")
	}

	uri, err := FromPath("/tmp/clip one.mp4")
	if err != nil {
		t.Fatalf("FromPath failed: %v", err)
	}
	if uri != "file:///tmp/clip%20one.mp4" {
		t.Errorf("unexpected uri %q", uri)
	}

	path, err := ToPath(uri)
	if err != nil {
		t.Fatalf("ToPath failed: %v", err)
	}
	if path != "/tmp/clip one.mp4" {
		t.Errorf("expected original path, got %q", path)
	}
}

func TestToPath_WindowsDrive(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("windows paths only")
	}

	path, err := ToPath("file:///C:/Videos/a.mp4")
	if err != nil {
		t.Fatalf("ToPath failed: %v", err)
	}
	if path != `C:\Videos\a.mp4` {
		t.Errorf("unexpected path %q", path)
	}
}

func TestToPath_RejectsOtherSchemes(t *testing.T) {
	if _, err := ToPath("https://example.com/a.mp4"); !errors.Is(err, ErrNotFileURI) {
		t.Errorf("expected ErrNotFileURI, got %v", err)
	}
}
