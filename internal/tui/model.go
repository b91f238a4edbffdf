// Package tui is the interactive terminal front end: a bubbletea program
// that drives a session controller and renders its screen.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/menta2k/adaptvideo/internal/config"
	"github.com/menta2k/adaptvideo/pkg/media"
	"github.com/menta2k/adaptvideo/pkg/player"
	"github.com/menta2k/adaptvideo/pkg/session"
)

const (
	defaultColumns = 64
	sheetCellWidth = 250
	// thumbTop is the line the thumbnail starts on.
	thumbTop = 2
)

// mode is the input mode of the model.
type mode int

const (
	modeNormal mode = iota
	modePath
	modePrompt
	modeTemplates
	modeHistory
)

// Options configures the model.
type Options struct {
	Cycler  *player.Cycler
	Loader  *media.Loader
	Fetcher media.Fetcher
	Logger  *slog.Logger
	Output  config.OutputConfig
	Columns int
	Server  string
}

// Model is the tea.Model of the terminal UI. Controller calls are
// serialized: at most one command runs at a time, and Update only touches
// the controller while none is in flight.
type Model struct {
	ctx     context.Context
	ctrl    *session.Controller
	screen  *Screen
	cycler  *player.Cycler
	loader  *media.Loader
	fetcher media.Fetcher
	logger  *slog.Logger
	output  config.OutputConfig
	server  string

	cols, rows int
	cursorX    int
	cursorY    int

	mode  mode
	input string
	list  int
	busy  string
	notes []string
}

// New creates the model. The screen must be the view and indicator the
// controller was built with.
func New(ctx context.Context, ctrl *session.Controller, screen *Screen, opts Options) (Model, error) {
	if ctrl == nil || screen == nil {
		return Model{}, errors.New("tui: controller and screen are required")
	}

	cycler := opts.Cycler
	if cycler == nil {
		var err error
		if cycler, err = player.New(screen); err != nil {
			return Model{}, err
		}
	}
	loader := opts.Loader
	if loader == nil {
		loader = media.NewLoader(opts.Fetcher)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cols := opts.Columns
	if cols <= 0 {
		cols = defaultColumns
	}
	w, h := ctrl.Selector().DisplaySize()
	rows := max(4, int(math.Round(float64(cols)*h/w/2)))

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		screen:  screen,
		cycler:  cycler,
		loader:  loader,
		fetcher: opts.Fetcher,
		logger:  logger,
		output:  opts.Output,
		server:  opts.Server,
		cols:    cols,
		rows:    rows,
		cursorX: cols / 2,
		cursorY: rows / 2,
		busy:    "templates",
	}, nil
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return m.run("templates", m.ctrl.LoadTemplates)
}

// cellCenter returns the display pixel at the centre of a thumbnail cell.
func (m Model) cellCenter(col, row int) (float64, float64) {
	w, h := m.ctrl.Selector().DisplaySize()
	return (float64(col) + 0.5) * w / float64(m.cols), (float64(row) + 0.5) * h / float64(m.rows)
}

func (m Model) addNote(note string) Model {
	m.notes = append(slices.Clip(m.notes), note)
	if len(m.notes) > 5 {
		m.notes = m.notes[len(m.notes)-5:]
	}
	return m
}
