package tui

import (
	"image"
	"slices"
	"sync"

	"github.com/menta2k/adaptvideo/pkg/geometry"
	"github.com/menta2k/adaptvideo/pkg/media"
	"github.com/menta2k/adaptvideo/pkg/player"
	"github.com/menta2k/adaptvideo/pkg/session"
	"github.com/menta2k/adaptvideo/pkg/types"
)

// preview is the last preview shown.
type preview struct {
	kind     session.PreviewKind
	template *types.Template
	result   *types.PreviewResult
	frames   []image.Image
}

// state is what the model renders. Slices are replaced, never mutated in
// place, so a copy can be read without the lock.
type state struct {
	status string
	level  session.Level

	templates []types.Template
	history   []types.UploadedVideo

	filename string
	info     *types.VideoInfo
	thumb    image.Image
	thumbErr error

	subjects    []types.Subject
	suggestions string
	recommended []types.Template
	selected    []int

	guide          *types.CropRect
	marker         *types.Point
	convertEnabled bool
	selStatus      string

	preview        *preview
	frame          image.Image
	frameIndex     int
	triggerEnabled bool
	triggerLabel   string

	conversion *types.ConvertResult
	comparison *session.Comparison
}

// Screen is the view state behind the terminal UI. It implements
// session.View, selector.Indicator and player.Screen and may be updated from
// any goroutine.
type Screen struct {
	mu       sync.Mutex
	st       state
	displayW float64
	displayH float64
	notify   func()
}

// NewScreen creates a screen for a thumbnail displayed at displayW x
// displayH virtual pixels.
func NewScreen(displayW, displayH float64) *Screen {
	return &Screen{
		displayW: displayW,
		displayH: displayH,
		st: state{
			frameIndex:   -1,
			triggerLabel: player.LabelIdle,
		},
	}
}

// SetNotify registers a function called after every change. It must not
// block.
func (s *Screen) SetNotify(fn func()) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// snapshot returns a copy of the current state.
func (s *Screen) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *Screen) update(fn func(st *state)) {
	s.mu.Lock()
	fn(&s.st)
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// SetPreviewFrames stores the decoded frames of the current preview.
func (s *Screen) SetPreviewFrames(frames []image.Image) {
	s.update(func(st *state) {
		if st.preview != nil {
			p := *st.preview
			p.frames = frames
			st.preview = &p
		}
	})
}

// Status implements session.View.
func (s *Screen) Status(msg string, level session.Level) {
	s.update(func(st *state) { st.status, st.level = msg, level })
}

// ShowTemplates implements session.View.
func (s *Screen) ShowTemplates(templates []types.Template) {
	s.update(func(st *state) { st.templates = slices.Clone(templates) })
}

// ShowHistory implements session.View.
func (s *Screen) ShowHistory(videos []types.UploadedVideo) {
	s.update(func(st *state) { st.history = slices.Clone(videos) })
}

// ShowVideo implements session.View. Everything derived from the previous
// video is cleared.
func (s *Screen) ShowVideo(filename, thumbnail string, info *types.VideoInfo) {
	var (
		thumb image.Image
		err   error
	)
	if thumbnail != "" {
		thumb, err = media.DecodeDataURL(thumbnail)
	}
	s.update(func(st *state) {
		st.filename, st.info = filename, info
		st.thumb, st.thumbErr = thumb, err
		st.subjects, st.suggestions, st.recommended, st.selected = nil, "", nil, nil
		st.preview, st.frame, st.frameIndex = nil, nil, -1
		st.conversion, st.comparison = nil, nil
	})
}

// ShowAnalysis implements session.View.
func (s *Screen) ShowAnalysis(subjects []types.Subject, suggestions string, recommended []types.Template) {
	s.update(func(st *state) {
		st.subjects = slices.Clone(subjects)
		st.suggestions = suggestions
		st.recommended = slices.Clone(recommended)
	})
}

// ShowSubjectSelection implements session.View.
func (s *Screen) ShowSubjectSelection(selected []int) {
	s.update(func(st *state) { st.selected = slices.Clone(selected) })
}

// ShowPreview implements session.View.
func (s *Screen) ShowPreview(kind session.PreviewKind, template *types.Template, result *types.PreviewResult) {
	s.update(func(st *state) {
		st.preview = &preview{kind: kind, template: template, result: result}
	})
}

// ShowConversion implements session.View.
func (s *Screen) ShowConversion(result *types.ConvertResult) {
	s.update(func(st *state) { st.conversion = result })
}

// ShowComparison implements session.View.
func (s *Screen) ShowComparison(cmp session.Comparison) {
	s.update(func(st *state) { st.comparison = &cmp })
}

// ShowCropGuide implements selector.Indicator.
func (s *Screen) ShowCropGuide(rect types.CropRect) {
	s.update(func(st *state) { st.guide = &rect })
}

// HideCropGuide implements selector.Indicator.
func (s *Screen) HideCropGuide() {
	s.update(func(st *state) { st.guide = nil })
}

// ShowCenterMarker implements selector.Indicator.
func (s *Screen) ShowCenterMarker(x, y float64) {
	p := geometry.Normalize(x, y, s.displayW, s.displayH)
	s.update(func(st *state) { st.marker = &p })
}

// HideCenterMarker implements selector.Indicator.
func (s *Screen) HideCenterMarker() {
	s.update(func(st *state) { st.marker = nil })
}

// SetConvertEnabled implements selector.Indicator.
func (s *Screen) SetConvertEnabled(enabled bool) {
	s.update(func(st *state) { st.convertEnabled = enabled })
}

// SetStatus implements selector.Indicator.
func (s *Screen) SetStatus(text string) {
	s.update(func(st *state) { st.selStatus = text })
}

// ShowFrame implements player.Screen.
func (s *Screen) ShowFrame(index int, frame string) {
	s.update(func(st *state) {
		if st.preview != nil && index < len(st.preview.frames) {
			st.frame, st.frameIndex = st.preview.frames[index], index
			return
		}
		if img, err := media.DecodeDataURL(frame); err == nil {
			st.frame, st.frameIndex = img, index
		}
	})
}

// RestoreFrame implements player.Screen.
func (s *Screen) RestoreFrame() {
	s.update(func(st *state) { st.frame, st.frameIndex = nil, -1 })
}

// SetTrigger implements player.Screen.
func (s *Screen) SetTrigger(enabled bool, label string) {
	s.update(func(st *state) { st.triggerEnabled, st.triggerLabel = enabled, label })
}
