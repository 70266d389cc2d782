// Package main provides the CLI entry point for clipedit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/clipedit/pkg/adapters/ffengine"
	"github.com/user/clipedit/pkg/adapters/filesink"
	"github.com/user/clipedit/pkg/adapters/ggrenderer"
	"github.com/user/clipedit/pkg/adapters/logger"
	"github.com/user/clipedit/pkg/adapters/nullsink"
	"github.com/user/clipedit/pkg/adapters/osfilesystem"
	"github.com/user/clipedit/pkg/config"
	"github.com/user/clipedit/pkg/editor"
	"github.com/user/clipedit/pkg/httpshell"
	"github.com/user/clipedit/pkg/mediauri"
	"github.com/user/clipedit/pkg/ports"
)

var version = "dev"

const shutdownTimeout = 5 * time.Second

func main() {
	app := &cli.App{
		Name:    "clipedit",
		Usage:   l10n.T("Assemble clips on a layered timeline and preview them live"),
		Version: version,
		Commands: []*cli.Command{
			serveCommand(),
			probeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
		&cli.StringFlag{Name: "log-format", Value: "console", Usage: l10n.T("Log format (console, json)"), Category: l10n.T("Logging")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
	}
}

func serveCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
		&cli.StringFlag{Name: "listen", Usage: l10n.T("HTTP listen address"), Category: l10n.T("Server")},
		&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable"), Category: l10n.T("Server")},
		&cli.StringSliceFlag{Name: "clip", Usage: l10n.T("Clip to add at startup as PATH,LAYER,START,DURATION"), Category: l10n.T("Timeline")},
		&cli.IntFlag{Name: "width", Usage: l10n.T("Preview frame width"), Category: l10n.T("Preview")},
		&cli.IntFlag{Name: "height", Usage: l10n.T("Preview frame height"), Category: l10n.T("Preview")},
		&cli.Float64Flag{Name: "fps", Usage: l10n.T("Preview frame rate"), Category: l10n.T("Preview")},
		&cli.IntFlag{Name: "quality", Usage: l10n.T("MJPEG stream quality (1-100)"), Category: l10n.T("Preview")},
		&cli.IntFlag{Name: "stream-width", Usage: l10n.T("Maximum MJPEG frame width (0 = preview size)"), Category: l10n.T("Preview")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
	}

	return &cli.Command{
		Name:   "serve",
		Usage:  l10n.T("Run the editor with its HTTP interface"),
		Flags:  append(flags, loggingFlags()...),
		Action: runServe,
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Print what the engine learns about media files"),
		ArgsUsage: "FILE...",
		Flags:     loggingFlags(),
		Action:    runProbe,
	}
}

// buildConfig starts from the config file, if any, and applies flag overrides.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("listen") {
		cfg.Listen = c.String("listen")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.IsSet("width") {
		cfg.Preview.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Preview.Height = c.Int("height")
	}
	if c.IsSet("fps") {
		cfg.Preview.FPS = c.Float64("fps")
	}
	if c.IsSet("quality") {
		cfg.StreamQuality = c.Int("quality")
	}
	if c.IsSet("stream-width") {
		cfg.StreamMaxWidth = c.Int("stream-width")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	for _, spec := range c.StringSlice("clip") {
		clip, err := parseClip(spec)
		if err != nil {
			return cfg, err
		}
		cfg.Clips = append(cfg.Clips, clip)
	}

	return cfg, cfg.Validate()
}

func newLogger(c *cli.Context, level, format string) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	if format == "json" {
		return logger.NewJSON(ports.ParseLogLevel(level), os.Stderr)
	}
	return logger.NewConsole(ports.ParseLogLevel(level))
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func runServe(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	log := newLogger(c, cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	engine, err := ffengine.New(ffengine.Options{FFmpegPath: cfg.FFmpegPath}, log)
	if err != nil {
		return err
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	var shell *httpshell.Server
	proc := editor.New(engine, fs, editor.Options{
		Preview:            cfg.PreviewOptions(),
		Debug:              sink,
		DebugFrameInterval: cfg.DebugFrameInterval,
		OnFailure: func(f editor.Failure) {
			shell.ReportFailure(f)
		},
	}, log)
	shell = httpshell.New(proc, renderer, httpshell.Options{
		StreamQuality:  cfg.StreamQuality,
		StreamBuffer:   cfg.StreamBuffer,
		StreamMaxWidth: cfg.StreamMaxWidth,
	}, log)

	go proc.Run(ctx)

	if len(cfg.Clips) > 0 {
		n := addStartupClips(ctx, proc, cfg.Clips, log)
		log.Info(l10n.F("Added %d of %d startup clips", n, len(cfg.Clips)))
	}

	srv := &http.Server{
		Addr:        cfg.Listen,
		Handler:     shell.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(l10n.F("Listening on http://%s", cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		cancel()
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn(l10n.F("HTTP shutdown: %s", serr))
	}
	shell.Close()
	<-proc.Done()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runProbe(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New(l10n.T("At least one file argument is required"))
	}

	log := newLogger(c, c.String("log-level"), c.String("log-format"))
	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	fs := osfilesystem.New()
	prober := ffengine.NewProber(log)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, path := range c.Args().Slice() {
		abs, err := fs.Abs(path)
		if err != nil {
			return err
		}
		if ok, _ := fs.Exists(abs); !ok {
			return fmt.Errorf("%s: %s", l10n.T("File not found"), path)
		}
		uri, err := mediauri.FromPath(abs)
		if err != nil {
			return err
		}
		info, err := prober.Probe(ctx, uri)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := enc.Encode(info); err != nil {
			return err
		}
	}
	return nil
}
