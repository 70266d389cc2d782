package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/config"
	"github.com/user/clipedit/pkg/editor"
	"github.com/user/clipedit/pkg/ports"
)

type commandRunner interface {
	Do(ctx context.Context, cmd editor.Command) error
}

// parseClip parses PATH,LAYER,START,DURATION. START and DURATION use Go
// duration syntax; PATH may itself contain commas.
func parseClip(spec string) (config.ClipConfig, error) {
	parts := strings.Split(spec, ",")
	if len(parts) < 4 {
		return config.ClipConfig{}, fmt.Errorf("clip %q: want PATH,LAYER,START,DURATION", spec)
	}
	n := len(parts)

	layer, err := strconv.ParseUint(strings.TrimSpace(parts[n-3]), 10, 32)
	if err != nil {
		return config.ClipConfig{}, fmt.Errorf("clip %q: layer: %w", spec, err)
	}
	start, err := time.ParseDuration(strings.TrimSpace(parts[n-2]))
	if err != nil {
		return config.ClipConfig{}, fmt.Errorf("clip %q: start: %w", spec, err)
	}
	duration, err := time.ParseDuration(strings.TrimSpace(parts[n-1]))
	if err != nil {
		return config.ClipConfig{}, fmt.Errorf("clip %q: duration: %w", spec, err)
	}

	return config.ClipConfig{
		Path:     strings.Join(parts[:n-3], ","),
		Layer:    uint32(layer),
		Start:    start,
		Duration: duration,
	}, nil
}

// addStartupClips adds clips in order and returns how many were accepted.
// A rejected clip is logged and skipped. It stops early once the editor or
// ctx is gone.
func addStartupClips(ctx context.Context, ed commandRunner, clips []config.ClipConfig, log ports.Logger) int {
	added := 0
	for _, clip := range clips {
		err := ed.Do(ctx, editor.AddClip{
			Path:     clip.Path,
			Layer:    clip.Layer,
			Start:    clip.Start,
			Duration: clip.Duration,
		})
		if err == nil {
			added++
			continue
		}
		if ctx.Err() != nil || errors.Is(err, editor.ErrClosed) {
			log.Warn(l10n.F("Startup clips interrupted: %s", err))
			return added
		}
		log.Warn(l10n.F("Startup clip %s not added: %s", clip.Path, err))
	}
	return added
}
