package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/menta2k/adaptvideo"
	"github.com/menta2k/adaptvideo/internal/config"
	"github.com/menta2k/adaptvideo/internal/tui"
	"github.com/menta2k/adaptvideo/internal/utils"
	"github.com/menta2k/adaptvideo/pkg/media"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// cropFlags are shared by preview and convert.
type cropFlags struct {
	fileID   string
	template string
	mode     string
	subjects string
	position string
}

func (c *cropFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.fileID, "id", "", "file id of an uploaded video (required)")
	fs.StringVar(&c.template, "template", "", "output template name")
	fs.StringVar(&c.mode, "mode", string(types.CropModeLLM), "crop mode: llm|center")
	fs.StringVar(&c.subjects, "subjects", "", "comma separated subject numbers to keep, e.g. 1,3")
	fs.StringVar(&c.position, "position", "", "normalized crop position x,y, e.g. 0.5,0.25")
}

// apply opens the video, analyses it when subjects are needed and applies
// the template, mode, subject and position choices.
func (c *cropFlags) apply(ctx context.Context, app *adaptvideo.App) error {
	if err := openVideo(ctx, app, c.fileID); err != nil {
		return err
	}
	ctrl := app.Controller

	mode := types.CropMode(c.mode)
	if mode != types.CropModeLLM && mode != types.CropModeCenter {
		return fmt.Errorf("unknown crop mode %q", c.mode)
	}
	ctrl.SetCropMode(mode)

	if mode == types.CropModeLLM && c.position == "" {
		subjects, err := splitInts(c.subjects)
		if err != nil {
			return err
		}
		if err := ctrl.Analyze(ctx); err != nil {
			return err
		}
		for _, n := range subjects {
			if err := ctrl.ToggleSubject(n - 1); err != nil {
				return err
			}
		}
	}

	if c.template != "" {
		if err := ctrl.SelectTemplate(c.template); err != nil {
			return err
		}
	}

	if c.position != "" {
		p, err := parsePoint(c.position)
		if err != nil {
			return err
		}
		ctrl.PickPoint(p)
	}
	return nil
}

// openVideo makes fileID the current video.
func openVideo(ctx context.Context, app *adaptvideo.App, fileID string) error {
	if fileID == "" {
		return errors.New("-id is required")
	}
	ctrl := app.Controller
	if err := ctrl.LoadTemplates(ctx); err != nil {
		return err
	}
	videos, err := ctrl.LoadHistory(ctx)
	if err != nil {
		return err
	}
	for _, v := range videos {
		if v.FileID == fileID {
			return ctrl.SelectExisting(v)
		}
	}
	return fmt.Errorf("no uploaded video with id %s", fileID)
}

func runTemplates(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	app, closer, err := newApp(g)
	if err != nil {
		return err
	}
	defer closer.Close()
	return app.Controller.LoadTemplates(ctx)
}

func runHistory(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	app, closer, err := newApp(g)
	if err != nil {
		return err
	}
	defer closer.Close()
	_, err = app.Controller.LoadHistory(ctx)
	return err
}

func runUpload(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	prompt := fs.String("prompt", "", "follow-up instruction for a second analysis")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: upload [-prompt text] <video file>")
	}

	app, closer, err := newApp(g)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctrl := app.Controller
	if err := ctrl.LoadTemplates(ctx); err != nil {
		return err
	}
	if err := ctrl.UploadAndAnalyze(ctx, fs.Arg(0)); err != nil {
		return err
	}
	if *prompt != "" {
		if err := ctrl.Reanalyze(ctx, *prompt); err != nil {
			return err
		}
	}
	fmt.Printf("file id: %s\n", ctrl.Session().FileID())
	return nil
}

func runPreview(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	var crop cropFlags
	crop.register(fs)
	kind := fs.String("kind", "template", "preview of: template|original")
	save := fs.Bool("save", false, "save the frames as a contact sheet in the output directory")
	play := fs.Bool("play", false, "play the frames once (use with -v)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app, closer, err := newApp(g)
	if err != nil {
		return err
	}
	defer closer.Close()
	ctrl := app.Controller

	var frames []string
	switch *kind {
	case "template":
		if err := crop.apply(ctx, app); err != nil {
			return err
		}
		if err := ctrl.Preview(ctx); err != nil {
			return err
		}
		frames = ctrl.Session().PreviewFrames()
	case "original":
		if err := openVideo(ctx, app, crop.fileID); err != nil {
			return err
		}
		res, err := ctrl.OriginalPreview(ctx)
		if err != nil {
			return err
		}
		frames = res.PreviewFrames
	default:
		return fmt.Errorf("unknown preview kind %q", *kind)
	}

	if *play {
		if err := app.Cycler.Play(ctx, frames); err != nil {
			return err
		}
	}
	if *save {
		path, err := saveSheet(ctx, app, frames, *kind)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", path)
	}
	return nil
}

// saveSheet writes the frames as one contact sheet image.
func saveSheet(ctx context.Context, app *adaptvideo.App, frames []string, kind string) (string, error) {
	out := app.Config.Output
	images, err := media.NewLoader(app.Client).LoadAll(ctx, frames)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(out.Dir); err != nil {
		return "", err
	}
	name := app.Controller.Session().Filename()
	if name == "" {
		name = "preview"
	}
	path := utils.GenerateOutputFilename(name, out.Dir, "", "_"+kind+"_preview", strings.TrimPrefix(media.Extension(out.Format), "."))
	sheet := media.ContactSheet(images, 250)
	if err := media.Save(sheet, path, out.Format, out.Quality, out.Lossless); err != nil {
		return "", err
	}
	return path, nil
}

func runConvert(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var crop cropFlags
	crop.register(fs)
	download := fs.Bool("download", false, "download the converted video into the output directory")
	preview := fs.Bool("preview", false, "save preview frames of the converted video as a contact sheet")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app, closer, err := newApp(g)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := crop.apply(ctx, app); err != nil {
		return err
	}
	ctrl := app.Controller
	if crop.position != "" {
		err = ctrl.ConvertPosition(ctx)
	} else {
		err = ctrl.Convert(ctx)
	}
	if err != nil {
		return err
	}

	if *preview {
		res, err := ctrl.ConvertedPreview(ctx)
		if err != nil {
			return err
		}
		path, err := saveSheet(ctx, app, res.PreviewFrames, "converted")
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", path)
	}
	if *download {
		path, err := app.Download(ctx, app.Config.Output.Dir)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", path)
	}
	return nil
}

func runCompare(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	id := fs.String("id", "", "file id of an uploaded video (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app, closer, err := newApp(g)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := openVideo(ctx, app, *id); err != nil {
		return err
	}
	return app.Controller.Compare(ctx)
}

func runTUI(ctx context.Context, g globals, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	columns := fs.Int("columns", 0, "thumbnail width in terminal cells")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	// The terminal belongs to the UI, so the log goes to a file.
	logger, closer, err := newLogger(cfg, config.DefaultLogFile())
	if err != nil {
		return err
	}
	defer closer.Close()

	screen := tui.NewScreen(float64(cfg.Display.Width), float64(cfg.Display.Height))
	app, err := adaptvideo.New(cfg, screen, logger)
	if err != nil {
		return err
	}

	m, err := tui.New(ctx, app.Controller, screen, tui.Options{
		Cycler:  app.Cycler,
		Fetcher: app.Client,
		Logger:  logger,
		Output:  cfg.Output,
		Columns: *columns,
		Server:  cfg.Server.BaseURL,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	screen.SetNotify(tui.Notifier(program))

	logger.Info("starting terminal UI", "server", cfg.Server.BaseURL, "version", adaptvideo.Version)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// splitInts parses a comma separated list of numbers; empty entries are
// skipped.
func splitInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("subject %q is not a number", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func parsePoint(s string) (types.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return types.Point{}, fmt.Errorf("position %q is not x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err := errors.Join(errX, errY); err != nil {
		return types.Point{}, fmt.Errorf("position %q: %w", s, err)
	}
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return types.Point{}, fmt.Errorf("position %q is outside 0..1", s)
	}
	return types.Point{X: x, Y: y}, nil
}
