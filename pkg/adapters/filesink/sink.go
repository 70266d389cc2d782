// Package filesink writes debug output under a directory.
//
// Layout:
//
//	<dir>/timeline/rev-000003.json
//	<dir>/frames/<session>/frame-000030.png
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/clipedit/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a sink writing below baseDir.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

func (s *Sink) Enabled() bool {
	return true
}

// SaveTimelineJSON saves the snapshot taken at revision.
func (s *Sink) SaveTimelineJSON(revision uint64, data []byte) error {
	dir := filepath.Join(s.baseDir, "timeline")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("rev-%06d.json", revision)), data)
}

// SaveFrame saves a preview frame as PNG.
func (s *Sink) SaveFrame(sessionID string, seq uint64, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames", sessionID)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", seq, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("frame-%06d.png", seq)), data)
}

var _ ports.DebugSink = (*Sink)(nil)
