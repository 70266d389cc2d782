package httpshell

import (
	"fmt"
	"image"
	"image/color"
	"path"
	"time"

	"github.com/user/clipedit/pkg/ports"
	"github.com/user/clipedit/pkg/timeline"
)

// Overview image geometry.
const (
	overviewWidth   = 960
	overviewHeader  = 28
	overviewRow     = 36
	overviewLabel   = 56
	overviewPadding = 8
)

var (
	overviewBackground = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	overviewText       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	overviewGrid       = color.RGBA{R: 0x33, G: 0x33, B: 0x55, A: 0xff}
	overviewVideo      = color.RGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xc0}
	overviewAudio      = color.RGBA{R: 0x60, G: 0xa5, B: 0xfa, A: 0xc0}
	overviewPlayhead   = color.RGBA{R: 0xf8, G: 0x71, B: 0x71, A: 0xff}
)

// drawTimeline renders one row per layer with clips placed on a shared time
// axis. A negative playhead is not drawn.
func drawTimeline(r ports.Renderer, snap timeline.Snapshot, playhead time.Duration) image.Image {
	rows := len(snap.Layers)
	if rows == 0 {
		rows = 1
	}
	height := overviewHeader + rows*overviewRow + overviewPadding
	c := r.CreateCanvas(overviewWidth, height, overviewBackground)

	small := ports.TextStyle{FontSize: 12, Color: overviewText}
	c.DrawText(fmt.Sprintf("rev %d  %s", snap.Revision, snap.Duration.Round(time.Millisecond)), overviewPadding, overviewHeader/2, small)

	axis := overviewWidth - overviewLabel - overviewPadding
	x := func(d time.Duration) int {
		if snap.Duration <= 0 {
			return overviewLabel
		}
		return overviewLabel + int(int64(axis)*int64(d)/int64(snap.Duration))
	}

	for i, layer := range snap.Layers {
		top := overviewHeader + i*overviewRow
		c.DrawLine(overviewLabel, top, overviewWidth-overviewPadding, top, overviewGrid, 1)
		c.DrawText(fmt.Sprintf("L%d", layer.Priority), overviewPadding, top+overviewRow/2, small)

		for _, clip := range layer.Clips {
			left, right := x(clip.Start), x(clip.Start+clip.Duration)
			if right-left < 2 {
				right = left + 2
			}
			fill := overviewVideo
			if clip.Tracks == ports.TrackAudio.String() {
				fill = overviewAudio
			}
			c.DrawRoundedRect(left, top+4, right-left, overviewRow-8, 4, fill)
			c.DrawRectStroke(left, top+4, right-left, overviewRow-8, overviewText, 1)
			if right-left > 48 {
				c.DrawText(path.Base(clip.URI), left+4, top+overviewRow/2, small)
			}
		}
	}

	if playhead >= 0 && playhead <= snap.Duration {
		c.DrawRect(x(playhead)-1, overviewHeader, 2, height-overviewHeader, overviewPlayhead)
	}
	return c.ToImage()
}
