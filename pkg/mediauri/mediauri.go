// Package mediauri converts platform-native file paths to file URIs and back.
package mediauri

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for an empty path.
	ErrEmptyPath = errors.New("mediauri: empty path")

	// ErrRelativePath is returned when a path is not absolute.
	ErrRelativePath = errors.New("mediauri: path is not absolute")

	// ErrNotFileURI is returned when a URI does not use the file scheme.
	ErrNotFileURI = errors.New("mediauri: not a file URI")
)

// FromPath converts an absolute platform path into a file URI.
func FromPath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s", ErrRelativePath, path)
	}
	return fromNative(path, os.PathSeparator), nil
}

// fromNative builds the URI for p whose separator is sep.
// Windows paths get backslashes normalized, drive letters rooted ("/C:/...")
// and UNC prefixes turned into the URI host.
func fromNative(p string, sep byte) string {
	if sep != '/' {
		p = strings.ReplaceAll(p, string(sep), "/")
	}

	u := url.URL{Scheme: "file"}
	switch {
	case strings.HasPrefix(p, "//"):
		rest := strings.TrimPrefix(p, "//")
		host, tail, _ := strings.Cut(rest, "/")
		u.Host = host
		u.Path = "/" + tail
	case len(p) >= 2 && p[1] == ':':
		u.Path = "/" + p
	default:
		u.Path = p
	}
	return u.String()
}

// ToPath converts a file URI back into a platform path.
func ToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %s", ErrNotFileURI, uri)
	}

	p := u.Path
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if u.Host != "" && u.Host != "localhost" {
		p = "//" + u.Host + p
	}
	return filepath.FromSlash(p), nil
}
