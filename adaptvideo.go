// Package adaptvideo is a client for a video re-cropping service: it uploads
// a video, asks the service for the subjects worth keeping, lets the user
// pick an output template and a crop position, previews the result and
// converts the video.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/menta2k/adaptvideo"
//		"github.com/menta2k/adaptvideo/internal/config"
//		"github.com/menta2k/adaptvideo/internal/console"
//	)
//
//	func main() {
//		cfg, err := config.Load("")
//		if err != nil {
//			log.Fatal(err)
//		}
//		app, err := adaptvideo.New(cfg, console.New(os.Stdout, false), nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		ctx := context.Background()
//		ctrl := app.Controller
//		if err := ctrl.LoadTemplates(ctx); err != nil {
//			log.Fatal(err)
//		}
//		if err := ctrl.UploadAndAnalyze(ctx, "talk.mp4"); err != nil {
//			log.Fatal(err)
//		}
//		if err := ctrl.SelectTemplate("portrait 9:16"); err != nil {
//			log.Fatal(err)
//		}
//		if err := ctrl.Convert(ctx); err != nil {
//			log.Fatal(err)
//		}
//		path, err := app.Download(ctx, "out")
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("saved %s", path)
//	}
//
// The package wires these components:
//
//  1. API client (pkg/api): the service's HTTP endpoints
//  2. Geometry (pkg/geometry): crop rectangles and coordinate conversions
//  3. Selector (pkg/selector): the crop position state machine
//  4. Request builder (pkg/request): preview and convert request bodies
//  5. Session (pkg/session): the workflow that ties them together
//  6. Player (pkg/player): one-shot preview frame playback
package adaptvideo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/menta2k/adaptvideo/internal/config"
	"github.com/menta2k/adaptvideo/internal/utils"
	"github.com/menta2k/adaptvideo/pkg/api"
	"github.com/menta2k/adaptvideo/pkg/player"
	"github.com/menta2k/adaptvideo/pkg/probe"
	"github.com/menta2k/adaptvideo/pkg/selector"
	"github.com/menta2k/adaptvideo/pkg/session"
)

// Version of the adaptvideo client
const Version = "1.0.0"

// ErrNothingToDownload is returned by Download before a conversion.
var ErrNothingToDownload = errors.New("no converted video to download")

// Renderer displays everything the application produces: session
// outcomes, the crop position overlay and preview playback.
type Renderer interface {
	session.View
	selector.Indicator
	player.Screen
}

// App holds the wired components of a client session.
type App struct {
	Config     *config.Config
	Client     *api.Client
	Selector   *selector.Selector
	Controller *session.Controller
	Cycler     *player.Cycler
	Logger     *slog.Logger
}

// New wires a client session from cfg. A nil logger means slog.Default.
func New(cfg *config.Config, r Renderer, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if r == nil {
		return nil, errors.New("adaptvideo: renderer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := api.NewClient(cfg.Server.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger))

	sel, err := selector.New(r, float64(cfg.Display.Width), float64(cfg.Display.Height))
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithMaxUploadSize(cfg.MaxUploadBytes()),
		session.WithExtensions(cfg.Upload.AllowedExtensions),
		session.WithComparisonSize(cfg.Preview.ComparisonWidth, cfg.Preview.ComparisonHeight),
	}
	if cfg.Upload.Probe {
		opts = append(opts, session.WithInspector(probe.New()))
	}
	ctrl, err := session.New(client, r, sel, opts...)
	if err != nil {
		return nil, err
	}

	cycler, err := player.New(r,
		player.WithInterval(cfg.FrameInterval()),
		player.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Client:     client,
		Selector:   sel,
		Controller: ctrl,
		Cycler:     cycler,
		Logger:     logger,
	}, nil
}

// Download saves the last converted video into dir and returns its path.
func (a *App) Download(ctx context.Context, dir string) (string, error) {
	sess := a.Controller.Session()
	url := sess.DownloadURL()
	if url == "" {
		return "", ErrNothingToDownload
	}
	name := sess.ConvertedFilename()
	if name == "" {
		name = filepath.Base(url)
	}

	data, err := a.Client.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, utils.SanitizeFilename(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.Logger.Info("converted video saved", "path", path, "size", utils.FormatFileSize(int64(len(data))))
	return path, nil
}
