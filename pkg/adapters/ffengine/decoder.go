package ffengine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// SourceSpec describes the decoded frames wanted from one media file.
type SourceSpec struct {
	Path      string
	Offset    time.Duration
	Width     int
	Height    int
	FrameRate float64
}

// FrameSource yields consecutive frames at SourceSpec.FrameRate.
// Next returns io.EOF when the media is exhausted.
type FrameSource interface {
	Next() (*image.RGBA, error)
	Close() error
}

// SourceFactory opens a FrameSource. The source must stop when ctx is done.
type SourceFactory func(ctx context.Context, spec SourceSpec) (FrameSource, error)

// FFmpegSource returns a SourceFactory decoding with the ffmpeg binary at path.
// Frames are scaled to fit the target size, letterboxed and converted to RGBA.
func FFmpegSource(path string) SourceFactory {
	return func(ctx context.Context, spec SourceSpec) (FrameSource, error) {
		return startFFmpeg(ctx, path, spec)
	}
}

type ffmpegSource struct {
	cmd  *exec.Cmd
	out  io.ReadCloser
	rect image.Rectangle

	closeOnce sync.Once
}

func ffmpegArgs(spec SourceSpec) []string {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,fps=%s",
		spec.Width, spec.Height, spec.Width, spec.Height,
		strconv.FormatFloat(spec.FrameRate, 'f', -1, 64),
	)
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(spec.Offset.Seconds(), 'f', 3, 64),
		"-i", spec.Path,
		"-an",
		"-vf", filter,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	}
}

func startFFmpeg(ctx context.Context, ffmpegPath string, spec SourceSpec) (*ffmpegSource, error) {
	if spec.Width <= 0 || spec.Height <= 0 || spec.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid source size %dx%d @ %g", spec.Width, spec.Height, spec.FrameRate)
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, ffmpegArgs(spec)...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &ffmpegSource{
		cmd:  cmd,
		out:  out,
		rect: image.Rect(0, 0, spec.Width, spec.Height),
	}, nil
}

func (s *ffmpegSource) Next() (*image.RGBA, error) {
	img := image.NewRGBA(s.rect)
	if _, err := io.ReadFull(s.out, img.Pix); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return img, nil
}

func (s *ffmpegSource) Close() error {
	s.closeOnce.Do(func() {
		s.out.Close()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	})
	return nil
}
