package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/menta2k/adaptvideo/pkg/player"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case doneMsg:
		return m.handleDone(msg)
	case historyMsg:
		return m.handleHistory(msg)
	case framesMsg:
		return m.handleFrames(msg)
	case savedMsg:
		return m.handleSaved(msg)
	case redrawMsg:
		return m, nil
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modePath, modePrompt:
		return m.handleInput(msg)
	case modeTemplates, modeHistory:
		return m.handleList(msg)
	}

	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "up":
		m.cursorY = max(0, m.cursorY-1)
		return m, nil
	case "down":
		m.cursorY = min(m.rows-1, m.cursorY+1)
		return m, nil
	case "left":
		m.cursorX = max(0, m.cursorX-1)
		return m, nil
	case "right":
		m.cursorX = min(m.cols-1, m.cursorX+1)
		return m, nil
	case "l":
		return m.play()
	case "w":
		return m, m.saveSheet()
	}

	if m.busy != "" {
		return m.addNote(fmt.Sprintf(TextBusy, m.busy)), nil
	}

	switch key {
	case "enter", " ":
		x, y := m.cellCenter(m.cursorX, m.cursorY)
		m.ctrl.PickPosition(x, y)
	case "u":
		m.mode, m.input = modePath, ""
	case "a":
		m.mode, m.input = modePrompt, ""
	case "t":
		m.mode, m.list = modeTemplates, 0
	case "h":
		return m.start("history", nil)
	case "m":
		if m.ctrl.Session().CropMode() == types.CropModeLLM {
			m.ctrl.SetCropMode(types.CropModeCenter)
		} else {
			m.ctrl.SetCropMode(types.CropModeLLM)
		}
	case "r":
		return m.start("analysis", m.ctrl.Analyze)
	case "p":
		return m.start("preview", m.ctrl.Preview)
	case "o":
		return m.start("preview", func(ctx context.Context) error {
			_, err := m.ctrl.OriginalPreview(ctx)
			return err
		})
	case "v":
		return m.start("preview", func(ctx context.Context) error {
			_, err := m.ctrl.ConvertedPreview(ctx)
			return err
		})
	case "c":
		return m.start("conversion", m.ctrl.Convert)
	case "C":
		return m.start("conversion", m.ctrl.ConvertPosition)
	case "s":
		return m.start("comparison", m.ctrl.Compare)
	case "d":
		return m, m.download()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		_ = m.ctrl.ToggleSubject(int(key[0] - '1'))
	}
	return m, nil
}

// start marks the model busy and runs an action. A nil fn loads the
// history.
func (m Model) start(action string, fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = action
	if fn == nil {
		return m, m.loadHistory()
	}
	return m, m.run(action, fn)
}

func (m Model) play() (tea.Model, tea.Cmd) {
	p := m.screen.snapshot().preview
	if p == nil || p.result == nil {
		return m.addNote("generate a preview first"), nil
	}
	if err := m.cycler.Start(m.ctx, p.result.PreviewFrames); err != nil {
		if !errors.Is(err, player.ErrAlreadyPlaying) {
			m.logger.Warn("playback failed", "error", err)
		}
		return m.addNote(err.Error()), nil
	}
	return m, nil
}

// handleInput edits the path or prompt line.
func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode, m.input = modeNormal, ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input)
		kind := m.mode
		m.mode, m.input = modeNormal, ""
		if text == "" && kind == modePath {
			return m, nil
		}
		if kind == modePath {
			return m.start("upload", func(ctx context.Context) error {
				return m.ctrl.UploadAndAnalyze(ctx, text)
			})
		}
		return m.start("analysis", func(ctx context.Context) error {
			return m.ctrl.Reanalyze(ctx, text)
		})
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			m.input += " "
		}
	}
	return m, nil
}

// handleList moves through and picks from the template or history list.
func (m Model) handleList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.screen.snapshot()
	n := len(st.templates)
	if m.mode == modeHistory {
		n = len(st.history)
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = modeNormal
	case "up", "k":
		m.list = max(0, m.list-1)
	case "down", "j":
		m.list = min(max(0, n-1), m.list+1)
	case "enter":
		kind := m.mode
		m.mode = modeNormal
		if m.list >= n {
			return m, nil
		}
		if kind == modeTemplates {
			_ = m.ctrl.SelectTemplate(st.templates[m.list].Name)
			return m, nil
		}
		if err := m.ctrl.SelectExisting(st.history[m.list]); err != nil {
			return m, nil
		}
		return m.start("analysis", m.ctrl.Analyze)
	}
	return m, nil
}

// handleMouse picks a crop position with a click on the thumbnail.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.mode != modeNormal {
		return m, nil
	}
	col, row := msg.X, msg.Y-thumbTop
	if col < 0 || col >= m.cols || row < 0 || row >= m.rows {
		return m, nil
	}
	m.cursorX, m.cursorY = col, row
	if m.busy != "" {
		return m.addNote(fmt.Sprintf(TextBusy, m.busy)), nil
	}
	x, y := m.cellCenter(col, row)
	m.ctrl.PickPosition(x, y)
	return m, nil
}

// handleDone clears the busy flag and chains frame loading after previews.
func (m Model) handleDone(msg doneMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		m.logger.Debug("action finished with error", "action", msg.action, "error", msg.err)
		return m, nil
	}
	if msg.action == "preview" {
		return m, m.loadFrames()
	}
	return m, nil
}

func (m Model) handleHistory(msg historyMsg) (tea.Model, tea.Cmd) {
	m.busy = ""
	if msg.err != nil {
		return m, nil
	}
	if len(msg.videos) == 0 {
		return m.addNote("no uploaded videos yet"), nil
	}
	m.mode, m.list = modeHistory, 0
	return m, nil
}

func (m Model) handleFrames(msg framesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("failed to decode preview frames", "error", msg.err)
		return m.addNote("could not decode preview frames: " + msg.err.Error()), nil
	}
	return m.addNote(fmt.Sprintf(TextFramesReady, msg.count)), nil
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("save failed", "what", msg.what, "error", msg.err)
		return m.addNote(fmt.Sprintf("saving %s failed: %v", msg.what, msg.err)), nil
	}
	m.logger.Info("saved", "what", msg.what, "path", msg.path)
	return m.addNote(fmt.Sprintf("saved %s to %s", msg.what, msg.path)), nil
}
