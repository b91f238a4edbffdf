package tui

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/adaptvideo/internal/config"
	"github.com/menta2k/adaptvideo/internal/stubserver"
	"github.com/menta2k/adaptvideo/pkg/api"
	"github.com/menta2k/adaptvideo/pkg/player"
	"github.com/menta2k/adaptvideo/pkg/selector"
	"github.com/menta2k/adaptvideo/pkg/session"
	"github.com/menta2k/adaptvideo/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	model  tea.Model
	screen *Screen
	ctrl   *session.Controller
	stub   *stubserver.Server
	cycler *player.Cycler
	outDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stub := stubserver.New()
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	screen := NewScreen(640, 360)
	sel, err := selector.New(screen, 640, 360)
	require.NoError(t, err)
	ctrl, err := session.New(client, screen, sel)
	require.NoError(t, err)
	cycler, err := player.New(screen, player.WithInterval(time.Millisecond))
	require.NoError(t, err)

	out := config.Default().Output
	out.Dir = filepath.Join(t.TempDir(), "out")
	out.Format = "png"

	m, err := New(context.Background(), ctrl, screen, Options{
		Cycler:  cycler,
		Fetcher: client,
		Output:  out,
		Server:  srv.URL,
	})
	require.NoError(t, err)

	h := &harness{model: m, screen: screen, ctrl: ctrl, stub: stub, cycler: cycler, outDir: out.Dir}
	h.run(m.Init())
	return h
}

// run feeds the result of cmd back into the model until no command is
// left.
func (h *harness) run(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		h.model, cmd = h.model.Update(msg)
	}
}

func (h *harness) send(msg tea.Msg) {
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(msg)
	h.run(cmd)
}

func (h *harness) keys(keys ...string) {
	for _, k := range keys {
		switch k {
		case "enter":
			h.send(tea.KeyMsg{Type: tea.KeyEnter})
		case "down":
			h.send(tea.KeyMsg{Type: tea.KeyDown})
		case "esc":
			h.send(tea.KeyMsg{Type: tea.KeyEsc})
		default:
			h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

func (h *harness) notes() string {
	return strings.Join(h.model.(Model).notes, "\n")
}

func (h *harness) upload(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))
	h.keys("u", path, "enter")
}

func TestModel_UploadAndAnalyze(t *testing.T) {
	h := newHarness(t)
	assert.Len(t, h.screen.snapshot().templates, 7)

	h.upload(t)

	st := h.screen.snapshot()
	assert.Equal(t, "clip.mp4", st.filename)
	assert.NotNil(t, st.thumb)
	assert.Len(t, st.subjects, 3)
	assert.Equal(t, session.MsgAnalysed, st.status)
	assert.Equal(t, 1, h.stub.Requests(api.PathAnalyze))

	view := h.model.View()
	assert.Contains(t, view, "presenter")
	assert.Contains(t, view, "Suggested crops")
}

func TestModel_TemplateSubjectsPreviewConvert(t *testing.T) {
	h := newHarness(t)
	h.upload(t)

	h.keys("t", "down", "down", "down", "down", "enter")
	tmpl, ok := h.ctrl.Session().Template()
	require.True(t, ok)
	assert.Equal(t, "portrait 9:16", tmpl.Name)

	h.keys("1")
	assert.Equal(t, []int{0}, h.screen.snapshot().selected)

	h.keys("p")
	st := h.screen.snapshot()
	require.NotNil(t, st.preview)
	assert.Len(t, st.preview.frames, 4)
	assert.Contains(t, h.notes(), "4 preview frames ready")

	h.keys("l")
	<-h.cycler.Done()
	st = h.screen.snapshot()
	assert.Nil(t, st.frame)
	assert.True(t, st.triggerEnabled)

	h.keys("c")
	require.NotNil(t, h.screen.snapshot().conversion)
	var req types.ConversionRequest
	require.NoError(t, json.Unmarshal(h.stub.LastBody(api.PathConvert), &req))
	assert.Equal(t, []types.Point{{X: 0.3, Y: 0.45}}, req.Centers)

	h.keys("w")
	matches, err := filepath.Glob(filepath.Join(h.outDir, "clip_template_preview.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	h.keys("d")
	_, err = os.Stat(filepath.Join(h.outDir, h.ctrl.Session().ConvertedFilename()))
	assert.NoError(t, err)
	assert.Contains(t, h.notes(), "saved converted video")
}

func TestModel_PickPositionAndConvert(t *testing.T) {
	h := newHarness(t)
	h.upload(t)

	h.keys("C")
	assert.Equal(t, session.MsgNoPosition, h.screen.snapshot().status)

	h.keys("enter")
	center, ok := h.ctrl.Selector().Center()
	require.True(t, ok)
	assert.InDelta(t, 325.0/640, center.X, 1e-9)
	assert.InDelta(t, 190.0/360, center.Y, 1e-9)
	assert.False(t, h.screen.snapshot().convertEnabled)

	h.keys("t", "down", "down", "down", "down", "down", "enter")
	assert.True(t, h.screen.snapshot().convertEnabled)
	assert.NotNil(t, h.screen.snapshot().guide)

	h.keys("C")
	var req types.ConversionRequest
	require.NoError(t, json.Unmarshal(h.stub.LastBody(api.PathConvert), &req))
	require.NotNil(t, req.Center)
	assert.InDelta(t, center.X, req.Center.X, 1e-9)
	assert.Equal(t, 1080, req.Width)
	assert.Equal(t, 1080, req.Height)
}

func TestModel_MouseClick(t *testing.T) {
	h := newHarness(t)
	h.send(tea.MouseMsg{X: 16, Y: thumbTop + 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	m := h.model.(Model)
	assert.Equal(t, 16, m.cursorX)
	assert.Equal(t, 3, m.cursorY)
	center, ok := h.ctrl.Selector().Center()
	require.True(t, ok)
	assert.InDelta(t, 16.5/64, center.X, 1e-9)
	assert.InDelta(t, 3.5/18, center.Y, 1e-9)

	h.send(tea.MouseMsg{X: 200, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 16, h.model.(Model).cursorX)
}

func TestModel_CropModeAndHistory(t *testing.T) {
	h := newHarness(t)
	h.upload(t)

	h.keys("m")
	assert.Equal(t, types.CropModeCenter, h.ctrl.Session().CropMode())
	h.keys("m")
	assert.Equal(t, types.CropModeLLM, h.ctrl.Session().CropMode())

	h.keys("h")
	m := h.model.(Model)
	require.Equal(t, modeHistory, m.mode)
	assert.Contains(t, h.model.View(), "clip.mp4")

	h.keys("enter")
	assert.Equal(t, modeNormal, h.model.(Model).mode)
	assert.Equal(t, 2, h.stub.Requests(api.PathAnalyze))
	assert.Len(t, h.screen.snapshot().subjects, 3)
}

func TestModel_Reanalyze(t *testing.T) {
	h := newHarness(t)
	h.upload(t)

	h.keys("a", "keep the logo", "enter")
	var req types.AnalyzeRequest
	require.NoError(t, json.Unmarshal(h.stub.LastBody(api.PathAnalyze), &req))
	require.Len(t, req.ConversationHistory, 1)
	assert.Equal(t, "keep the logo", req.ConversationHistory[0].Content)
}

func TestModel_InputEditing(t *testing.T) {
	h := newHarness(t)
	h.keys("u", "abc")
	h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "ab", h.model.(Model).input)
	assert.Contains(t, h.model.View(), TextPathPrompt+"ab")

	h.keys("esc")
	assert.Equal(t, modeNormal, h.model.(Model).mode)
	assert.Equal(t, 0, h.stub.Requests(api.PathUpload))
}

func TestModel_BusyRejectsActions(t *testing.T) {
	h := newHarness(t)
	m := h.model.(Model)
	m.busy = "upload"
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Nil(t, cmd)
	assert.Contains(t, strings.Join(next.(Model).notes, "\n"), "working on upload")
}

func TestModel_PlayWithoutPreview(t *testing.T) {
	h := newHarness(t)
	h.keys("l")
	assert.Contains(t, h.notes(), "generate a preview first")
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)
	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
