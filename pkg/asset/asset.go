// Package asset resolves file-system paths into probed, shareable media assets.
package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/clipedit/pkg/mediauri"
	"github.com/user/clipedit/pkg/ports"
)

var (
	// ErrPathNotFound is returned when the path does not exist on the file system.
	ErrPathNotFound = errors.New("asset: path not found")

	// ErrProbeFailed is returned when the engine cannot determine a usable format or duration.
	ErrProbeFailed = errors.New("asset: probe failed")
)

// Asset is an immutable handle to a resolved, decodable media source.
// One Asset may back any number of clips.
type Asset struct {
	path string
	info ports.AssetInfo
}

// Path returns the absolute platform path the asset was resolved from.
func (a *Asset) Path() string { return a.path }

// URI returns the canonical file URI.
func (a *Asset) URI() string { return a.info.URI }

// Duration returns the decoded media duration.
func (a *Asset) Duration() time.Duration { return a.info.Duration }

// Info returns a copy of the probed asset information.
func (a *Asset) Info() ports.AssetInfo { return a.info }

// Resolver turns paths into assets. Assets are cached by URI.
// A Resolver is not safe for concurrent use; the editor calls it from its command loop only.
type Resolver struct {
	fs     ports.FileSystem
	prober ports.AssetProber
	cache  map[string]*Asset
	logger ports.Logger
}

// NewResolver creates a Resolver.
func NewResolver(fs ports.FileSystem, prober ports.AssetProber, logger ports.Logger) *Resolver {
	return &Resolver{
		fs:     fs,
		prober: prober,
		cache:  make(map[string]*Asset),
		logger: logger.WithComponent("asset"),
	}
}

// Resolve checks that path exists, converts it to a file URI and probes it.
// Resolution blocks on I/O and container parsing.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Asset, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}

	abs, err := r.fs.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPathNotFound, path, err)
	}

	exists, err := r.fs.Exists(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPathNotFound, path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	uri, err := mediauri.FromPath(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPathNotFound, path, err)
	}

	if a, ok := r.cache[uri]; ok {
		r.logger.Debug(l10n.F("Asset cache hit for %s", uri))
		return a, nil
	}

	r.logger.Debug(l10n.F("Probing %s", uri))
	info, err := r.prober.Probe(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProbeFailed, path, err)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("%w: %s: no usable duration", ErrProbeFailed, path)
	}
	if !info.HasVideo && !info.HasAudio {
		return nil, fmt.Errorf("%w: %s: no audio or video stream", ErrProbeFailed, path)
	}
	info.URI = uri

	a := &Asset{path: abs, info: info}
	r.cache[uri] = a
	r.logger.Debug(l10n.F("Resolved %s (%s)", uri, info.Duration))
	return a, nil
}

// Cached returns the number of cached assets.
func (r *Resolver) Cached() int {
	return len(r.cache)
}

// New builds an asset from already-probed information.
// It is meant for tests and for engines that resolve assets themselves.
func New(path string, info ports.AssetInfo) *Asset {
	return &Asset{path: path, info: info}
}
