package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/menta2k/adaptvideo/internal/utils"
	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/probe"
	"github.com/menta2k/adaptvideo/pkg/request"
	"github.com/menta2k/adaptvideo/pkg/selector"
	"github.com/menta2k/adaptvideo/pkg/types"
)

var (
	// ErrMissingContext is returned when an action lacks the state it needs,
	// e.g. converting before a video or template is chosen. No request is
	// sent in that case.
	ErrMissingContext = errors.New("missing context")
	// ErrMissingCollaborator is returned by New when a dependency is nil.
	ErrMissingCollaborator = errors.New("missing collaborator")
)

// Default limits.
const (
	DefaultMaxUploadSize    = 500 * 1024 * 1024
	DefaultComparisonWidth  = 400
	DefaultComparisonHeight = 300
)

// DefaultExtensions are the upload types the service accepts.
var DefaultExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".webm"}

// Transport is the service API used by the controller. *api.Client
// implements it.
type Transport interface {
	Templates(ctx context.Context) ([]types.Template, error)
	UploadedVideos(ctx context.Context) ([]types.UploadedVideo, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*types.UploadResult, error)
	Analyze(ctx context.Context, fileID string, history []types.ConversationTurn) (*types.AnalysisResult, error)
	Convert(ctx context.Context, req types.ConversionRequest) (*types.ConvertResult, error)
	GeneratePreview(ctx context.Context, req types.ConversionRequest) (*types.PreviewResult, error)
	GenerateOriginalPreview(ctx context.Context, fileID string) (*types.PreviewResult, error)
	GenerateConvertedPreview(ctx context.Context, fileID string) (*types.PreviewResult, error)
	VideoComparison(ctx context.Context, fileID string) (*types.ComparisonData, error)
	DebugConversions(ctx context.Context, fileID string) (map[string]any, error)
}

// Inspector checks a local file before it is uploaded. *probe.Prober
// implements it.
type Inspector interface {
	Inspect(path string) (types.VideoInfo, error)
}

// Controller runs the session workflow against a transport and renders
// every outcome through a view. Its methods must be called from a single
// goroutine.
type Controller struct {
	transport Transport
	view      View
	sel       *selector.Selector
	state     *Session
	logger    *slog.Logger
	inspector Inspector

	maxUploadSize int64
	extensions    []string
	compareW      int
	compareH      int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxUploadSize sets the largest file accepted for upload.
func WithMaxUploadSize(n int64) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxUploadSize = n
		}
	}
}

// WithExtensions sets the accepted upload extensions.
func WithExtensions(exts []string) Option {
	return func(c *Controller) {
		if len(exts) == 0 {
			return
		}
		c.extensions = c.extensions[:0]
		for _, e := range exts {
			e = strings.ToLower(e)
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			c.extensions = append(c.extensions, e)
		}
	}
}

// WithComparisonSize sets the box the comparison players are fitted into.
func WithComparisonSize(w, h int) Option {
	return func(c *Controller) {
		if w > 0 && h > 0 {
			c.compareW, c.compareH = w, h
		}
	}
}

// WithInspector enables a local check of files before upload.
func WithInspector(i Inspector) Option {
	return func(c *Controller) { c.inspector = i }
}

// WithSession starts the controller from an existing session.
func WithSession(s *Session) Option {
	return func(c *Controller) {
		if s != nil {
			c.state = s
		}
	}
}

// New creates a controller. All three collaborators are required.
func New(transport Transport, view View, sel *selector.Selector, opts ...Option) (*Controller, error) {
	switch {
	case transport == nil:
		return nil, fmt.Errorf("%w: transport", ErrMissingCollaborator)
	case view == nil:
		return nil, fmt.Errorf("%w: view", ErrMissingCollaborator)
	case sel == nil:
		return nil, fmt.Errorf("%w: selector", ErrMissingCollaborator)
	}

	c := &Controller{
		transport:     transport,
		view:          view,
		sel:           sel,
		state:         NewSession(),
		logger:        slog.Default(),
		maxUploadSize: DefaultMaxUploadSize,
		extensions:    slices.Clone(DefaultExtensions),
		compareW:      DefaultComparisonWidth,
		compareH:      DefaultComparisonHeight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session state.
func (c *Controller) Session() *Session { return c.state }

// Selector returns the position selector.
func (c *Controller) Selector() *selector.Selector { return c.sel }

// LoadTemplates fetches the template catalogue.
func (c *Controller) LoadTemplates(ctx context.Context) error {
	templates, err := c.transport.Templates(ctx)
	if err != nil {
		return c.fail(err, "failed to load templates")
	}
	c.state.setTemplates(templates)
	c.view.ShowTemplates(c.state.Templates())
	c.logger.Debug("templates loaded", "count", len(templates))
	return nil
}

// LoadHistory fetches the upload history.
func (c *Controller) LoadHistory(ctx context.Context) ([]types.UploadedVideo, error) {
	videos, err := c.transport.UploadedVideos(ctx)
	if err != nil {
		return nil, c.fail(err, "failed to load upload history")
	}
	c.view.ShowHistory(videos)
	return videos, nil
}

// UploadAndAnalyze validates and uploads a local file, then analyses it.
func (c *Controller) UploadAndAnalyze(ctx context.Context, path string) error {
	if err := c.checkFile(path); err != nil {
		return c.reject(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return c.fail(err, "failed to open video")
	}
	defer f.Close()

	name := filepath.Base(path)
	c.view.Status(MsgUploading, LevelInfo)
	res, err := c.transport.Upload(ctx, name, f)
	if err != nil {
		return c.fail(err, "upload failed")
	}
	c.logger.Info("video uploaded", "file_id", res.FileID, "filename", name)

	c.startVideo(res.FileID, name, res.Thumbnail, res.VideoInfo)
	c.view.Status(MsgUploaded, LevelInfo)
	return c.Analyze(ctx)
}

// SelectExisting switches to a previously uploaded video. Call Analyze to
// fetch its subjects again.
func (c *Controller) SelectExisting(video types.UploadedVideo) error {
	if video.FileID == "" {
		return c.reject(missing(MsgNoVideo))
	}
	c.startVideo(video.FileID, video.Filename, video.Thumbnail, video.VideoInfo)
	return nil
}

// Analyze asks the service for subject suggestions for the current video.
func (c *Controller) Analyze(ctx context.Context) error {
	if !c.state.HasVideo() {
		return c.reject(missing(MsgNoVideo))
	}

	c.view.Status(MsgAnalysing, LevelInfo)
	res, err := c.transport.Analyze(ctx, c.state.FileID(), c.state.History())
	if err != nil {
		return c.fail(err, "AI analysis failed")
	}

	c.state.setAnalysis(res)
	c.logger.Info("analysis received",
		"file_id", c.state.FileID(),
		"subjects", len(res.AnalysisOptions),
		"recommended", len(c.state.recommended))

	c.view.Status(MsgAnalysed, LevelSuccess)
	c.view.ShowAnalysis(c.state.Subjects(), c.state.Suggestions(), c.state.Recommended())
	c.view.ShowSubjectSelection(nil)
	return nil
}

// Reanalyze adds prompt to the conversation and analyses again. The
// service's suggestions are kept as the assistant's reply.
func (c *Controller) Reanalyze(ctx context.Context, prompt string) error {
	n := len(c.state.history)
	if prompt = strings.TrimSpace(prompt); prompt != "" {
		c.state.history = append(c.state.history, types.ConversationTurn{Role: "user", Content: prompt})
	}
	if err := c.Analyze(ctx); err != nil {
		c.state.history = c.state.history[:n]
		return err
	}
	if s := c.state.Suggestions(); s != "" {
		c.state.history = append(c.state.history, types.ConversationTurn{Role: "assistant", Content: s})
	}
	return nil
}

// ToggleSubject selects or deselects subject i.
func (c *Controller) ToggleSubject(i int) error {
	if i < 0 || i >= len(c.state.subjects) {
		return c.reject(missing(fmt.Sprintf("no subject %d", i+1)))
	}
	c.state.toggle(i)
	c.view.ShowSubjectSelection(c.state.SelectedSubjects())
	return nil
}

// SelectedCenters returns the centres of the selected subjects.
func (c *Controller) SelectedCenters() []types.Point {
	return c.state.SelectedCenters()
}

// SetCropMode switches between centre and subject crops.
func (c *Controller) SetCropMode(m types.CropMode) {
	c.state.SetCropMode(m)
}

// SelectTemplate chooses the output template by name.
func (c *Controller) SelectTemplate(name string) error {
	t, ok := c.state.FindTemplate(name)
	if !ok {
		return c.reject(missing(fmt.Sprintf("unknown template %q", name)))
	}
	c.state.setTemplate(t)
	c.sel.SelectTemplate(t)
	return nil
}

// PickPosition records a click at display pixel (x, y) on the thumbnail.
func (c *Controller) PickPosition(x, y float64) types.Point {
	w, h := c.sel.DisplaySize()
	p := geometry.Normalize(x, y, w, h)
	c.sel.SelectCenter(p)
	return p
}

// PickPoint records a crop position given in normalized coordinates.
func (c *Controller) PickPoint(p types.Point) {
	w, h := c.sel.DisplaySize()
	x, y := geometry.Denormalize(p, w, h)
	c.PickPosition(x, y)
}

// Convert converts the current video with the chosen template and crop
// mode.
func (c *Controller) Convert(ctx context.Context) error {
	tmpl, _ := c.state.Template()
	if err := request.Validate(c.state.FileID(), tmpl); err != nil {
		c.logger.Debug("convert rejected", "error", err)
		return c.reject(missing(MsgNoVideoOrTemplate))
	}
	return c.convert(ctx, c.conversionRequest(tmpl))
}

// ConvertPosition converts around the position picked on the thumbnail.
// Selected subjects still take precedence over the picked position.
func (c *Controller) ConvertPosition(ctx context.Context) error {
	if !c.state.HasVideo() {
		return c.reject(missing(MsgNoVideo))
	}
	center, ok := c.sel.Center()
	if !ok {
		return c.reject(missing(MsgNoPosition))
	}
	tmpl, ok := c.sel.Template()
	if !ok {
		return c.reject(missing(MsgNoTemplate))
	}
	req := request.Build(c.state.FileID(), tmpl, types.CropModeLLM, &center, c.state.SelectedCenters())
	return c.convert(ctx, req)
}

func (c *Controller) convert(ctx context.Context, req types.ConversionRequest) error {
	c.view.Status(MsgConverting, LevelInfo)
	res, err := c.transport.Convert(ctx, req)
	if err != nil {
		return c.fail(err, "conversion failed")
	}
	if !res.Success {
		return c.fail(errors.New("service reported failure"), "conversion failed")
	}

	c.state.setConversion(res)
	c.logger.Info("conversion finished",
		"file_id", res.FileID,
		"mode", req.CropMode,
		"download_url", res.DownloadURL)
	c.view.ShowConversion(res)
	c.view.Status(MsgConverted, LevelSuccess)
	return nil
}

// conversionRequest builds the request for the template in the session's
// crop mode. In subject mode the selected subjects win; without a
// selection the top subject is used, then the picked position, and without
// either the service crops the middle.
func (c *Controller) conversionRequest(tmpl types.Template) types.ConversionRequest {
	mode := c.state.CropMode()
	selected := c.state.SelectedCenters()
	var single *types.Point
	if mode == types.CropModeLLM {
		if len(selected) == 0 {
			single = c.state.FirstSubjectCenter()
		}
		if p, ok := c.sel.Center(); ok && single == nil && len(selected) == 0 {
			single = &p
		}
		mode = request.ModeFor(single, selected)
	}
	return request.Build(c.state.FileID(), tmpl, mode, single, selected)
}

func (c *Controller) startVideo(fileID, filename, thumbnail string, info *types.VideoInfo) {
	c.state.ResetForNewVideo()
	c.state.setVideo(fileID, filename, thumbnail, info)
	c.sel.Reset()
	c.view.ShowVideo(filename, thumbnail, c.state.VideoInfo())
}

func (c *Controller) checkFile(path string) error {
	if !utils.HasExtension(path, c.extensions) {
		return missing(fmt.Sprintf("unsupported file type %q", utils.GetFileExtension(path)))
	}

	st, err := os.Stat(path)
	if err != nil {
		return missing(fmt.Sprintf("cannot read %s", filepath.Base(path)))
	}
	if st.Size() > c.maxUploadSize {
		return missing(fmt.Sprintf("file exceeds the %dMB limit", c.maxUploadSize/(1024*1024)))
	}

	if c.inspector != nil {
		if _, err := c.inspector.Inspect(path); err != nil {
			if errors.Is(err, probe.ErrProbeUnavailable) {
				c.logger.Debug("skipping local probe", "error", err)
				return nil
			}
			return missing(fmt.Sprintf("not a playable video: %v", err))
		}
	}
	return nil
}

func missing(detail string) error {
	return fmt.Errorf("%w: %s", ErrMissingContext, detail)
}

// reject reports a missing-context error without a network round trip.
func (c *Controller) reject(err error) error {
	msg := strings.TrimPrefix(err.Error(), ErrMissingContext.Error()+": ")
	c.logger.Warn("action rejected", "reason", msg)
	c.view.Status(msg, LevelError)
	return err
}

// fail reports a failed request.
func (c *Controller) fail(err error, action string) error {
	c.logger.Error(action, "file_id", c.state.FileID(), "error", err)
	c.view.Status(action+": "+err.Error(), LevelError)
	return fmt.Errorf("%s: %w", action, err)
}
