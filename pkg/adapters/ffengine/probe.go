package ffengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/mediauri"
	"github.com/user/clipedit/pkg/ports"
)

var errNoMovie = errors.New("no movie header")

// Prober determines duration and stream layout of media files.
type Prober struct {
	logger ports.Logger

	// fallback probes files mp4ff cannot read.
	fallback func(path string) (ports.AssetInfo, error)
}

// NewProber creates a prober using mp4ff first and Vidio as fallback.
func NewProber(logger ports.Logger) *Prober {
	return &Prober{logger: logger, fallback: probeVidio}
}

// Probe inspects the file behind a file:// uri.
func (p *Prober) Probe(ctx context.Context, uri string) (ports.AssetInfo, error) {
	if err := ctx.Err(); err != nil {
		return ports.AssetInfo{}, err
	}

	path, err := mediauri.ToPath(uri)
	if err != nil {
		return ports.AssetInfo{}, fmt.Errorf("%w: %w", ErrUnsupportedURI, err)
	}

	info, err := probeMP4(path)
	if err != nil {
		p.logger.Debug(l10n.F("mp4 probe of %s failed (%s), trying ffprobe", path, err))
		info, err = p.fallback(path)
		if err != nil {
			return ports.AssetInfo{}, err
		}
	}
	info.URI = uri
	return info, nil
}

func probeMP4(path string) (ports.AssetInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.AssetInfo{}, err
	}
	defer f.Close()

	parsed, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return ports.AssetInfo{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := parsed.Moov
	if moov == nil && parsed.Init != nil {
		moov = parsed.Init.Moov
	}
	if moov == nil {
		return ports.AssetInfo{}, errNoMovie
	}

	info := describeMoov(moov)
	info.Container = "mp4"
	if parsed.Ftyp != nil && parsed.Ftyp.MajorBrand() == "qt  " {
		info.Container = "mov"
	}
	if info.Duration <= 0 {
		return ports.AssetInfo{}, errors.New("no duration in movie header")
	}
	return info, nil
}

// describeMoov reads duration, dimensions and codecs from a movie box.
func describeMoov(moov *mp4.MoovBox) ports.AssetInfo {
	var info ports.AssetInfo
	if moov.Mvhd != nil {
		info.Duration = scaleDuration(moov.Mvhd.Duration, moov.Mvhd.Timescale)
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.VideoCodec = videoCodec(trak)
			if trak.Tkhd != nil {
				info.Width = int(trak.Tkhd.Width >> 16)
				info.Height = int(trak.Tkhd.Height >> 16)
			}
			info.FrameRate = frameRate(trak)
			if info.Duration <= 0 && trak.Mdia.Mdhd != nil {
				info.Duration = scaleDuration(trak.Mdia.Mdhd.Duration, trak.Mdia.Mdhd.Timescale)
			}
		case "soun":
			info.HasAudio = true
		}
	}
	return info
}

func videoCodec(trak *mp4.TrakBox) string {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return "unknown"
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "hvc1", "hev1":
			return "hevc"
		case "av01":
			return "av1"
		case "vp08":
			return "vp8"
		case "vp09":
			return "vp9"
		}
	}
	return "unknown"
}

func frameRate(trak *mp4.TrakBox) float64 {
	mdhd := trak.Mdia.Mdhd
	if mdhd == nil || mdhd.Duration == 0 || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return 0
	}
	stsz := trak.Mdia.Minf.Stbl.Stsz
	if stsz == nil || stsz.SampleNumber == 0 {
		return 0
	}
	fps := float64(stsz.SampleNumber) * float64(mdhd.Timescale) / float64(mdhd.Duration)
	return math.Round(fps*1000) / 1000
}

func scaleDuration(d uint64, timescale uint32) time.Duration {
	if timescale == 0 {
		return 0
	}
	return time.Duration(float64(d) / float64(timescale) * float64(time.Second))
}

// probeVidio uses ffprobe through Vidio. Files without a video stream fail here.
func probeVidio(path string) (ports.AssetInfo, error) {
	v, err := vidio.NewVideo(path)
	if err != nil {
		return ports.AssetInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	defer v.Close()

	return ports.AssetInfo{
		Container:  strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		Duration:   time.Duration(v.Duration() * float64(time.Second)),
		Width:      v.Width(),
		Height:     v.Height(),
		FrameRate:  v.FPS(),
		VideoCodec: v.Codec(),
		HasVideo:   true,
		// extra streams besides the selected video stream are usually audio
		HasAudio: v.HasStreams(),
	}, nil
}
