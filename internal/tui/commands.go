package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/menta2k/adaptvideo/internal/utils"
	"github.com/menta2k/adaptvideo/pkg/media"
)

// run executes a controller action in a command.
func (m Model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{action: action, err: fn(ctx)}
	}
}

// loadHistory fetches the upload history.
func (m Model) loadHistory() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		videos, err := ctrl.LoadHistory(ctx)
		return historyMsg{videos: videos, err: err}
	}
}

// loadFrames decodes the frames of the current preview.
func (m Model) loadFrames() tea.Cmd {
	ctx, screen, loader := m.ctx, m.screen, m.loader
	p := screen.snapshot().preview
	if p == nil || p.result == nil {
		return nil
	}
	sources := p.result.PreviewFrames
	return func() tea.Msg {
		frames, err := loader.LoadAll(ctx, sources)
		if err != nil {
			return framesMsg{err: err}
		}
		screen.SetPreviewFrames(frames)
		return framesMsg{count: len(frames)}
	}
}

// saveSheet writes the preview frames as one contact sheet.
func (m Model) saveSheet() tea.Cmd {
	st := m.screen.snapshot()
	out := m.output
	return func() tea.Msg {
		if st.preview == nil || len(st.preview.frames) == 0 {
			return savedMsg{what: "preview frames", err: fmt.Errorf("no preview frames loaded")}
		}
		name := st.filename
		if name == "" {
			name = "preview"
		}
		path := utils.GenerateOutputFilename(name, out.Dir, "", "_"+st.preview.kind.String()+"_preview", strings.TrimPrefix(media.Extension(out.Format), "."))
		if err := utils.EnsureDir(out.Dir); err != nil {
			return savedMsg{what: "preview frames", err: err}
		}
		sheet := media.ContactSheet(st.preview.frames, sheetCellWidth)
		err := media.Save(sheet, path, out.Format, out.Quality, out.Lossless)
		return savedMsg{what: "preview frames", path: path, err: err}
	}
}

// download fetches the converted video into the output directory.
func (m Model) download() tea.Cmd {
	ctx, fetcher, out := m.ctx, m.fetcher, m.output
	sess := m.ctrl.Session()
	url, name := sess.DownloadURL(), sess.ConvertedFilename()
	return func() tea.Msg {
		if url == "" {
			return savedMsg{what: "converted video", err: fmt.Errorf("convert the video first")}
		}
		if fetcher == nil {
			return savedMsg{what: "converted video", err: fmt.Errorf("downloads are not configured")}
		}
		if name == "" {
			name = filepath.Base(url)
		}
		data, err := fetcher.Fetch(ctx, url)
		if err != nil {
			return savedMsg{what: "converted video", err: err}
		}
		if err := utils.EnsureDir(out.Dir); err != nil {
			return savedMsg{what: "converted video", err: err}
		}
		path := filepath.Join(out.Dir, utils.SanitizeFilename(name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return savedMsg{what: "converted video", err: err}
		}
		return savedMsg{what: "converted video", path: path}
	}
}

// Notifier returns a screen notify function that asks p to redraw.
func Notifier(p *tea.Program) func() {
	return func() { go p.Send(redrawMsg{}) }
}
